package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
)

// SchemeTransformer implements Transformer by compiling the upload body as
// scheme text.
type SchemeTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a SchemeTransformer.
func NewTransformer(logger *slog.Logger) *SchemeTransformer {
	return &SchemeTransformer{logger: logger}
}

func (t *SchemeTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.CompiledScheme, error) {
	if err := ctx.Err(); err != nil {
		return domain.CompiledScheme{}, err
	}

	scheme, err := domain.CompileScheme(raw.SchemeName(), string(raw.Value))
	if err != nil {
		return domain.CompiledScheme{}, err
	}
	t.logger.Debug("scheme compiled", "scheme", scheme.Name, "rows", len(scheme.Records))
	return scheme, nil
}

// Loaders fans a batch out to several loaders in order. The first failure
// stops the fan-out.
type Loaders []BatchLoader

func (ls Loaders) LoadBatch(ctx context.Context, schemes []domain.CompiledScheme) error {
	for i, l := range ls {
		if err := l.LoadBatch(ctx, schemes); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
