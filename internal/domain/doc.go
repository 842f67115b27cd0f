// Package domain compiles ZIP routing schemes and resolves ZIP codes against them.
//
// # Scheme Format
//
// A scheme is line-oriented text. Each line is `*`-separated:
//
//	<bin>*<machine>*<ignored>*<token>,<token>,...
//	e.g. `007*LabelX*ignored*30301-30310,303`
//
// The bin (facility code) must be all ASCII digits. A line may be wrapped in
// one pair of double quotes. Range tokens take four forms:
//
//	30301        point range 30301..30301
//	303          3-digit prefix, widened to 30300..30399
//	30301-30310  explicit 5-digit span
//	303-305      3-digit span, widened to 30300..30599
//
// Malformed lines and tokens are dropped silently; they never fail a compile.
//
// # Records and Keys
//
// Each valid token becomes an [IntervalRecord]. Its 11-digit keys widen the
// ZIP-5 bounds to the full ZIP+4+check-digit space:
//
//	zip11_start = zip_start + "000000"
//	zip11_end   = zip_end   + "999999"
//
// Keys are fixed-width digit strings, so string order equals numeric order.
//
// # Ordering
//
// [Compile] emits records in canonical order: numeric bin, zip_start,
// zip_end. That order is for display and export. [NewIndex] re-orders a copy
// by zip11_start, which is the order the resolver's binary search needs.
//
// Bins are identities as strings ("05" and "5" are distinct records) but
// compare numerically for ordering and bin-range listing. See [CompareBins]
// and [NumericBin].
//
// # Resolution
//
// [Index.Resolve] accepts 5, 9 or 11 digits (other characters are ignored).
// It tries the 11-, 9- and 5-digit spans of the query in turn, each by binary
// search plus a scan of [WindowRadius] positions either side of the anchor,
// and finally accepts any record holding the query's start key. The window is
// a heuristic: ranges overlapping beyond it can be missed.
package domain
