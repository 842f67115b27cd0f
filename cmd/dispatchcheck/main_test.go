package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
)

const checkScheme = "19*Machine 4*ATL*30301-30310\n20*Machine 9*ATL*303\n5*Dock*CHA*37401\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_SchemeOnly(t *testing.T) {
	assert.Equal(t, 0, run(writeFile(t, "scheme.txt", checkScheme), ""))
}

func TestRun_MatchingTable(t *testing.T) {
	table, err := domain.EncodeTable(domain.Compile(checkScheme))
	require.NoError(t, err)

	code := run(writeFile(t, "scheme.txt", checkScheme), writeFile(t, "scheme.csv", string(table)))
	assert.Equal(t, 0, code)
}

func TestRun_StaleTable(t *testing.T) {
	table, err := domain.EncodeTable(domain.Compile("19*Machine 4*ATL*30301-30310\n"))
	require.NoError(t, err)

	code := run(writeFile(t, "scheme.txt", checkScheme), writeFile(t, "scheme.csv", string(table)))
	assert.Equal(t, 1, code)
}

func TestRun_EmptyScheme(t *testing.T) {
	assert.Equal(t, 1, run(writeFile(t, "scheme.txt", "nothing\n"), ""))
}

func TestValidateOrder_FlagsDuplicatesAndOrder(t *testing.T) {
	a := domain.NewIntervalRecord("30301", "30310", "19", "M")
	b := domain.NewIntervalRecord("30300", "30399", "5", "M")

	p := validateOrder([]domain.IntervalRecord{a, b, a})
	assert.False(t, p.passed())
	assert.Len(t, p.errors, 2)
}

func TestValidateKeys_FlagsBadKeys(t *testing.T) {
	r := domain.NewIntervalRecord("30301", "30310", "19", "M")
	r.Key11End = "30310000000"

	p := validateKeys([]domain.IntervalRecord{r})
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "zip11_end")
}
