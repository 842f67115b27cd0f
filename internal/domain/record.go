package domain

import "strings"

const (
	// zipWidth is the width of a ZIP-5 bound.
	zipWidth = 5
	// keyWidth is the width of a ZIP+4+check-digit sort key.
	keyWidth = 11

	lowKeySuffix  = "000000"
	highKeySuffix = "999999"
)

// IntervalRecord is one compiled ZIP range routed to a bin and machine.
// Field order matches the table columns consumed by downstream tooling.
type IntervalRecord struct {
	ZipStart   string `json:"zip_start"`
	ZipEnd     string `json:"zip_end"`
	Bin        string `json:"bin"`
	Machine    string `json:"machine"`
	Note       string `json:"note"`
	Key11Start string `json:"zip11_start"`
	Key11End   string `json:"zip11_end"`
}

// NewIntervalRecord builds a record for an inclusive ZIP-5 range and derives
// its 11-digit keys.
func NewIntervalRecord(zipStart, zipEnd, bin, machine string) IntervalRecord {
	return IntervalRecord{
		ZipStart:   zipStart,
		ZipEnd:     zipEnd,
		Bin:        bin,
		Machine:    machine,
		Key11Start: zipStart + lowKeySuffix,
		Key11End:   zipEnd + highKeySuffix,
	}
}

// Contains reports whether [start, end] lies entirely inside the record's key span.
func (r IntervalRecord) Contains(start, end string) bool {
	return start >= r.Key11Start && end <= r.Key11End
}

// ContainsKey reports whether a single 11-digit key lies inside the record's key span.
func (r IntervalRecord) ContainsKey(key string) bool {
	return key >= r.Key11Start && key <= r.Key11End
}

type dedupKey struct {
	zipStart, zipEnd, bin, machine string
}

func (r IntervalRecord) dedupKey() dedupKey {
	return dedupKey{r.ZipStart, r.ZipEnd, r.Bin, r.Machine}
}

// ParseRangeToken converts one range token into an inclusive ZIP-5 span.
//
// Accepted forms are "30301", "303", "30301-30310" and "303-305". Three-digit
// bounds widen to "00" on the low side and "99" on the high side. Anything
// else reports ok=false.
func ParseRangeToken(token string) (zipStart, zipEnd string, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", false
	}

	if a, b, found := strings.Cut(token, "-"); found {
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		switch {
		case isDigits(a, zipWidth) && isDigits(b, zipWidth):
			return a, b, true
		case isDigits(a, 3) && isDigits(b, 3):
			return a + "00", b + "99", true
		default:
			return "", "", false
		}
	}

	switch {
	case isDigits(token, zipWidth):
		return token, token, true
	case isDigits(token, 3):
		return token + "00", token + "99", true
	default:
		return "", "", false
	}
}

// isDigits reports whether s is exactly n ASCII digits.
func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	return allDigits(s)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
