// Command dispatchcheck verifies a compiled dispatch table against the scheme
// it was built from: row parity, canonical order without duplicates, derived
// key integrity, and that every range start resolves.
//
// Usage:
//
//	go run ./cmd/dispatchcheck \
//	  -scheme data/scheme.txt \
//	  -table scheme.csv
//
// Without -table the freshly compiled rows are checked on their own.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
)

// maxReported caps the per-phase error detail.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	skipped bool
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	schemePath := flag.String("scheme", "", "path to the scheme text file")
	tablePath := flag.String("table", "", "path to a compiled scheme.csv (optional)")
	flag.Parse()

	if *schemePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*schemePath, *tablePath))
}

func run(schemePath, tablePath string) int {
	fmt.Println("=== Dispatch Table Validation ===")
	fmt.Println()

	text, err := os.ReadFile(schemePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read scheme: %v\n", err)
		return 1
	}
	compiled := domain.Compile(string(text))
	if len(compiled) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", schemePath, domain.ErrNoRecords)
		return 1
	}

	rows := compiled
	var table []domain.IntervalRecord
	if tablePath != "" {
		table, err = loadTable(tablePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load table: %v\n", err)
			return 1
		}
		rows = table
	}

	phases := []*phase{
		validateParity(compiled, table, tablePath != ""),
		validateOrder(rows),
		validateKeys(rows),
		validateResolution(rows),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "\033[33mSKIP\033[0m"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d compiled, %d checked\n", len(compiled), len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadTable(path string) ([]domain.IntervalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.ReadTable(f)
}

// ── Phases ──

func validateParity(compiled, table []domain.IntervalRecord, haveTable bool) *phase {
	p := &phase{name: "Table matches compiled scheme"}
	if !haveTable {
		p.skipped = true
		return p
	}
	if len(compiled) != len(table) {
		p.errorf("row count: compiled %d, table %d", len(compiled), len(table))
	}
	if diff := cmp.Diff(compiled, table); diff != "" {
		p.errorf("rows differ (-compiled +table):\n%s", indent(diff))
	}
	return p
}

func validateOrder(rows []domain.IntervalRecord) *phase {
	p := &phase{name: "Canonical order, no duplicates"}
	if !domain.IsCanonical(rows) {
		p.errorf("rows are not in bin, zip_start, zip_end order")
	}

	type identity struct{ zipStart, zipEnd, bin, machine string }
	seen := make(map[identity]int, len(rows))
	for i, r := range rows {
		id := identity{r.ZipStart, r.ZipEnd, r.Bin, r.Machine}
		if first, ok := seen[id]; ok {
			p.errorf("row %d duplicates row %d (%s-%s bin %s)", i+1, first+1, r.ZipStart, r.ZipEnd, r.Bin)
			continue
		}
		seen[id] = i
	}
	return p
}

func validateKeys(rows []domain.IntervalRecord) *phase {
	p := &phase{name: "Derived 11-digit keys"}
	for i, r := range rows {
		if want := r.ZipStart + "000000"; r.Key11Start != want {
			p.errorf("row %d: zip11_start %q, want %q", i+1, r.Key11Start, want)
		}
		if want := r.ZipEnd + "999999"; r.Key11End != want {
			p.errorf("row %d: zip11_end %q, want %q", i+1, r.Key11End, want)
		}
		if r.ZipStart > r.ZipEnd {
			p.errorf("row %d: zip_start %s after zip_end %s", i+1, r.ZipStart, r.ZipEnd)
		}
		if r.Note != "" {
			p.errorf("row %d: unexpected note %q", i+1, r.Note)
		}
	}
	return p
}

// validateResolution checks that each range start resolves to a record that
// owns it. Failures here usually mean overlapping ranges sit further apart
// than the scan window.
func validateResolution(rows []domain.IntervalRecord) *phase {
	p := &phase{name: "Every range start resolves"}
	idx := domain.NewIndex(rows)
	for i, r := range rows {
		got, ok := idx.Resolve(r.ZipStart)
		if !ok {
			p.errorf("row %d: %s does not resolve", i+1, r.ZipStart)
			continue
		}
		if !got.ContainsKey(r.Key11Start) {
			p.errorf("row %d: %s resolved to %s-%s", i+1, r.ZipStart, got.ZipStart, got.ZipEnd)
		}
	}
	return p
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n    ")
}
