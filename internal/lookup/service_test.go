package lookup_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
	"github.com/couchcryptid/zip-dispatch/internal/lookup"
	"github.com/couchcryptid/zip-dispatch/internal/observability"
)

const testScheme = `19*Line 4*x*30301-30310
20*Line 9*x*304
5*Dock*x*37401
`

func newService(t *testing.T) (*lookup.Service, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	return lookup.NewService(16, domain.DefaultSiteTable(), slog.Default(), metrics), metrics
}

func installed(t *testing.T) (*lookup.Service, *observability.Metrics) {
	t.Helper()
	svc, metrics := newService(t)
	scheme, err := domain.CompileScheme("test", testScheme)
	require.NoError(t, err)
	require.NoError(t, svc.Install(scheme))
	return svc, metrics
}

func TestService_NotReadyBeforeInstall(t *testing.T) {
	svc, _ := newService(t)

	require.Error(t, svc.CheckReadiness(context.Background()))
	_, ok := svc.Current()
	assert.False(t, ok)
	_, ok = svc.Lookup("30305")
	assert.False(t, ok)
}

func TestService_Lookup(t *testing.T) {
	svc, metrics := installed(t)
	require.NoError(t, svc.CheckReadiness(context.Background()))

	res, ok := svc.Lookup("30305")
	require.True(t, ok)
	assert.Equal(t, "19", res.Record.Bin)
	assert.Equal(t, "ATL 19", res.Site)
	assert.Equal(t, "site-ATL", res.SiteClass)
	assert.Equal(t, "Machine 4", res.MachineLabel)

	res, ok = svc.Lookup("30450-1234")
	require.True(t, ok)
	assert.Equal(t, "20", res.Record.Bin)

	res, ok = svc.Lookup("37401")
	require.True(t, ok)
	assert.Equal(t, "CHA 5", res.Site)
	assert.Empty(t, res.MachineLabel)

	_, ok = svc.Lookup("1234")
	assert.False(t, ok)

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.Lookups.WithLabelValues("match")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Lookups.WithLabelValues("no_match")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.IndexRecords), 0)
}

func TestService_LookupCachesResults(t *testing.T) {
	svc, metrics := installed(t)

	for range 3 {
		_, ok := svc.Lookup("99999")
		assert.False(t, ok)
	}
	_, _ = svc.Lookup("30305")
	_, _ = svc.Lookup("30305")

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.LookupCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.LookupCache.WithLabelValues("hit")), 0)
}

func TestService_InstallSwapsSnapshot(t *testing.T) {
	svc, metrics := installed(t)

	res, ok := svc.Lookup("30305")
	require.True(t, ok)
	assert.Equal(t, "19", res.Record.Bin)

	next, err := domain.CompileScheme("next", "27*M*x*30301-30399\n")
	require.NoError(t, err)
	require.NoError(t, svc.Install(next))

	res, ok = svc.Lookup("30305")
	require.True(t, ok)
	assert.Equal(t, "27", res.Record.Bin, "cache from the old scheme must not leak")

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "next", cur.Name)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SchemesInstalled), 0)
}

func TestService_InstallRejectsEmptyScheme(t *testing.T) {
	svc, _ := installed(t)

	err := svc.Install(domain.CompiledScheme{Name: "empty"})
	require.ErrorIs(t, err, domain.ErrNoRecords)

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "test", cur.Name)
}

func TestService_LoadBatchInstallsLast(t *testing.T) {
	svc, _ := newService(t)

	first, err := domain.CompileScheme("first", "19*M*x*30301\n")
	require.NoError(t, err)
	second, err := domain.CompileScheme("second", "20*M*x*30301\n")
	require.NoError(t, err)

	require.NoError(t, svc.LoadBatch(context.Background(), nil))
	require.NoError(t, svc.LoadBatch(context.Background(), []domain.CompiledScheme{first, second}))

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "second", cur.Name)
}

func TestService_BinRanges(t *testing.T) {
	svc, _ := installed(t)

	bin, rows, ok := svc.BinRanges("30305")
	require.True(t, ok)
	assert.Equal(t, "19", bin)
	require.Len(t, rows, 1)
	assert.Equal(t, "30301", rows[0].ZipStart)

	bin, rows, ok = svc.BinRanges("bin 020")
	require.True(t, ok)
	assert.Equal(t, "020", bin)
	require.Len(t, rows, 1)
	assert.Equal(t, "20", rows[0].Bin)

	bin, rows, ok = svc.BinRanges("77")
	require.True(t, ok)
	assert.Equal(t, "77", bin)
	assert.Empty(t, rows)

	_, _, ok = svc.BinRanges("none")
	assert.False(t, ok)
}

func TestService_BinRangesBeforeInstall(t *testing.T) {
	svc, _ := newService(t)

	bin, rows, ok := svc.BinRanges("19")
	require.True(t, ok)
	assert.Equal(t, "19", bin)
	assert.Empty(t, rows)
}

func TestService_ConcurrentLookupAndInstall(t *testing.T) {
	svc, _ := installed(t)
	next, err := domain.CompileScheme("next", "27*M*x*30301-30399\n")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				res, ok := svc.Lookup("30305")
				assert.True(t, ok)
				assert.Contains(t, []string{"19", "27"}, res.Record.Bin)
			}
		}()
		if i == 4 {
			require.NoError(t, svc.Install(next))
		}
	}
	wg.Wait()
}
