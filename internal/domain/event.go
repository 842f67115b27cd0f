package domain

import (
	"context"
	"fmt"
	"time"
)

// RawEvent is an unprocessed scheme upload from the source topic. Value holds
// the full scheme text; Key names the scheme.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SchemeName returns the upload's name, falling back to its topic coordinates.
func (e RawEvent) SchemeName() string {
	if len(e.Key) > 0 {
		return string(e.Key)
	}
	if e.Topic == "" {
		return "scheme"
	}
	return fmt.Sprintf("%s@%d:%d", e.Topic, e.Partition, e.Offset)
}
