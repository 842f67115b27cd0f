package domain

import "strings"

// NumericBin returns the numeric form of a bin code: digits only with leading
// zeros trimmed ("007" -> "7"). An all-zero code yields "0"; a code with no
// digits yields "".
func NumericBin(bin string) string {
	digits := ExtractDigits(bin)
	if digits == "" {
		return ""
	}
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// CompareBins compares two bin codes numerically. Codes of any width compare
// exactly; there is no integer conversion.
func CompareBins(a, b string) int {
	na, nb := NumericBin(a), NumericBin(b)
	if len(na) != len(nb) {
		if len(na) < len(nb) {
			return -1
		}
		return 1
	}
	return strings.Compare(na, nb)
}

// RangesForBin returns every record whose bin is numerically equal to bin,
// preserving input order.
func RangesForBin(records []IntervalRecord, bin string) []IntervalRecord {
	want := NumericBin(bin)
	if want == "" {
		return nil
	}
	var out []IntervalRecord
	for _, r := range records {
		if NumericBin(r.Bin) == want {
			out = append(out, r)
		}
	}
	return out
}

// ExtractDigits drops every non-ASCII-digit character from s.
func ExtractDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
