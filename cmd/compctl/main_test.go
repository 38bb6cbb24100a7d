package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPinCommand(t *testing.T) {
	out, err := execute(t, "pin", "17 04 217 033 1013")
	require.NoError(t, err)
	assert.Contains(t, out, "normalized: 17042170331013")
	assert.Contains(t, out, "display:    17-04-217-033-1013")
}

func TestPinCommandRejectsMalformed(t *testing.T) {
	_, err := execute(t, "pin", "1704")
	assert.ErrorContains(t, err, "14 digits")
}

func TestCompsRejectsBadInputBeforeNetwork(t *testing.T) {
	_, err := execute(t, "comps", "not-a-pin")
	assert.Error(t, err)

	_, err = execute(t, "comps", "17042170331013", "--kind", "rentals")
	assert.ErrorContains(t, err, "kind")
}

func TestQuotaCommand(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("PROVIDER_MONTHLY_CEILING", "75")

	out, err := execute(t, "quota")
	require.NoError(t, err)
	assert.Contains(t, out, "Ceiling:    75")
	assert.Contains(t, out, "Remaining:  75")
}

func TestEnrichmentWithoutCredential(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("PROVIDER_API_KEY", "")

	_, err := execute(t, "enrichment", "17042170331013")
	assert.ErrorContains(t, err, "unavailable")
}
