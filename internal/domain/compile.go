package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNoRecords is returned by callers that treat an empty compile as fatal.
var ErrNoRecords = errors.New("no usable scheme records")

// Compile parses scheme text into deduplicated interval records in canonical
// order (numeric bin, then zip_start, then zip_end).
//
// Scheme lines look like `007*LabelX*ignored*30301-30310,303`. Lines with fewer
// than four `*` fields, a non-numeric bin, or no valid range tokens contribute
// nothing. An empty result is not an error here; see CompileScheme.
func Compile(text string) []IntervalRecord {
	text = strings.ReplaceAll(text, "\r", "")

	var rows []IntervalRecord
	for _, line := range strings.Split(text, "\n") {
		rows = appendLineRecords(rows, line)
	}

	out := dedupe(rows)
	SortCanonical(out)
	return out
}

// appendLineRecords appends one record per valid range token on the line.
func appendLineRecords(rows []IntervalRecord, line string) []IntervalRecord {
	line = strings.TrimSpace(line)
	if line == "" {
		return rows
	}
	if len(line) >= 2 && line[0] == '"' && line[len(line)-1] == '"' {
		line = line[1 : len(line)-1]
	}

	parts := strings.Split(line, "*")
	if len(parts) < 4 {
		return rows
	}

	bin := strings.TrimSpace(parts[0])
	if bin == "" || !allDigits(bin) {
		return rows
	}
	machine := strings.TrimSpace(parts[1])

	for _, tok := range strings.Split(strings.TrimSpace(parts[3]), ",") {
		zipStart, zipEnd, ok := ParseRangeToken(tok)
		if !ok {
			continue
		}
		rows = append(rows, NewIntervalRecord(zipStart, zipEnd, bin, machine))
	}
	return rows
}

// dedupe drops repeated (zip_start, zip_end, bin, machine) tuples, keeping the first.
func dedupe(rows []IntervalRecord) []IntervalRecord {
	seen := make(map[dedupKey]struct{}, len(rows))
	out := make([]IntervalRecord, 0, len(rows))
	for _, r := range rows {
		k := r.dedupKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortCanonical orders records by numeric bin, zip_start, zip_end. Bins that
// are numerically equal but spelled differently ("05", "5") fall back to the
// raw bin string and then the machine so the order is total.
func SortCanonical(records []IntervalRecord) {
	slices.SortStableFunc(records, compareCanonical)
}

func compareCanonical(a, b IntervalRecord) int {
	if c := CompareBins(a.Bin, b.Bin); c != 0 {
		return c
	}
	if c := strings.Compare(a.ZipStart, b.ZipStart); c != 0 {
		return c
	}
	if c := strings.Compare(a.ZipEnd, b.ZipEnd); c != 0 {
		return c
	}
	if c := strings.Compare(a.Bin, b.Bin); c != 0 {
		return c
	}
	return strings.Compare(a.Machine, b.Machine)
}

// IsCanonical reports whether records are non-decreasing in canonical order.
func IsCanonical(records []IntervalRecord) bool {
	return slices.IsSortedFunc(records, compareCanonical)
}

// CompiledScheme is the output of one compile run.
type CompiledScheme struct {
	Name     string
	Records  []IntervalRecord
	Manifest Manifest
}

// CompileScheme compiles text and stamps a manifest. It returns ErrNoRecords
// when the scheme yields no usable rows.
func CompileScheme(name, text string) (CompiledScheme, error) {
	records := Compile(text)
	if len(records) == 0 {
		return CompiledScheme{}, fmt.Errorf("compile scheme %q: %w", name, ErrNoRecords)
	}
	return CompiledScheme{
		Name:     name,
		Records:  records,
		Manifest: NewManifest(len(records)),
	}, nil
}
