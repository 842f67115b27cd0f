package domain

import (
	"slices"
	"sort"
	"strings"
)

// WindowRadius is how many positions on each side of the binary-search anchor
// are checked for a containing record. Ranges that overlap or nest further
// apart than this can be missed.
const WindowRadius = 12

// Query is a normalized lookup: the extracted digits and the 11-digit span
// they cover.
type Query struct {
	Digits string
	Start  string
	End    string
}

// NormalizeQuery keeps the ASCII digits of input and widens them to an
// 11-digit span. Only 5, 9 and 11 digit inputs are accepted.
func NormalizeQuery(input string) (Query, bool) {
	digits := ExtractDigits(input)
	switch len(digits) {
	case 5, 9, 11:
		return spanOf(digits), true
	default:
		return Query{}, false
	}
}

func spanOf(digits string) Query {
	pad := keyWidth - len(digits)
	return Query{
		Digits: digits,
		Start:  digits + strings.Repeat("0", pad),
		End:    digits + strings.Repeat("9", pad),
	}
}

// candidates lists the spans to try, most specific first.
func (q Query) candidates() []Query {
	out := make([]Query, 0, 3)
	if len(q.Digits) == 11 {
		out = append(out, q)
	}
	if len(q.Digits) >= 9 {
		out = append(out, spanOf(q.Digits[:9]))
	}
	return append(out, spanOf(q.Digits[:5]))
}

// Index is an immutable, key-ordered view of compiled records. It is safe for
// concurrent use.
type Index struct {
	records []IntervalRecord
}

// NewIndex copies records and orders the copy by zip11_start. The sort is
// stable, so records sharing a start key keep their incoming order.
func NewIndex(records []IntervalRecord) *Index {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b IntervalRecord) int {
		return strings.Compare(a.Key11Start, b.Key11Start)
	})
	return &Index{records: sorted}
}

// Len returns the number of indexed records.
func (x *Index) Len() int {
	return len(x.records)
}

// Records returns a copy of the records in key order.
func (x *Index) Records() []IntervalRecord {
	return slices.Clone(x.records)
}

// Resolve finds the record owning query. Each candidate span (11, 9, then 5
// digits) is tried for full containment; failing that, any record containing
// the query's start key is accepted. Malformed queries never match.
func (x *Index) Resolve(query string) (IntervalRecord, bool) {
	q, ok := NormalizeQuery(query)
	if !ok || len(x.records) == 0 {
		return IntervalRecord{}, false
	}

	for _, c := range q.candidates() {
		if i, found := x.scan(c.Start, func(r IntervalRecord) bool { return r.Contains(c.Start, c.End) }); found {
			return x.records[i], true
		}
	}

	if i, found := x.scan(q.Start, func(r IntervalRecord) bool { return r.ContainsKey(q.Start) }); found {
		return x.records[i], true
	}
	return IntervalRecord{}, false
}

// BinFor resolves free-form input to a bin code. Inputs with 5, 9 or 11 digits
// are first looked up by start key; otherwise (or when that misses) the digits
// themselves are taken as the bin.
func (x *Index) BinFor(input string) (string, bool) {
	if q, ok := NormalizeQuery(input); ok {
		if i, found := x.scan(q.Start, func(r IntervalRecord) bool { return r.ContainsKey(q.Start) }); found {
			return x.records[i].Bin, true
		}
	}
	digits := ExtractDigits(input)
	if digits == "" {
		return "", false
	}
	return digits, true
}

// scan anchors on the rightmost record with zip11_start <= key and walks the
// surrounding window in key order. The first matching position wins.
func (x *Index) scan(key string, match func(IntervalRecord) bool) (int, bool) {
	anchor := x.anchor(key)
	if anchor < 0 {
		return 0, false
	}

	lo := max(0, anchor-WindowRadius)
	hi := min(len(x.records)-1, anchor+WindowRadius)
	for k := lo; k <= hi; k++ {
		if match(x.records[k]) {
			return k, true
		}
	}
	return 0, false
}

// anchor returns the rightmost position whose zip11_start <= key, or -1.
func (x *Index) anchor(key string) int {
	n := sort.Search(len(x.records), func(i int) bool {
		return x.records[i].Key11Start > key
	})
	return n - 1
}
