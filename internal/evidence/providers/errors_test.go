package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceError(t *testing.T) {
	t.Run("message names source and dataset", func(t *testing.T) {
		err := NewSourceError(ErrorBadData, SourcePrimaryRegistry, "decode rows", errors.New("eof")).WithDataset("uzyt-m557")
		assert.Equal(t, "primary_registry/uzyt-m557 [bad_data]: decode rows: eof", err.Error())
	})

	t.Run("retryable categories", func(t *testing.T) {
		assert.True(t, NewSourceError(ErrorTimeout, "s", "m", nil).Retryable)
		assert.True(t, NewSourceError(ErrorProviderOutage, "s", "m", nil).Retryable)
		assert.True(t, NewSourceError(ErrorQuotaExceeded, "s", "m", nil).Retryable)
		assert.False(t, NewSourceError(ErrorNotFound, "s", "m", nil).Retryable)
		assert.False(t, NewSourceError(ErrorUnauthorized, "s", "m", nil).Retryable)
	})

	t.Run("category survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("fetch parcel: %w", NewSourceError(ErrorNotFound, SourcePrimaryRegistry, "no location", nil))
		assert.True(t, IsNotFound(err))
		assert.Equal(t, SourcePrimaryRegistry, SourceOf(err))
		assert.False(t, IsRetryable(err))
	})

	t.Run("untagged errors are internal", func(t *testing.T) {
		assert.Equal(t, ErrorInternal, GetCategory(errors.New("boom")))
		assert.Equal(t, "", SourceOf(errors.New("boom")))
	})
}

func TestClassifyTransport(t *testing.T) {
	assert.Equal(t, ErrorTimeout, ClassifyTransport(context.DeadlineExceeded))
	assert.Equal(t, ErrorTimeout, ClassifyTransport(fmt.Errorf("get: %w", context.DeadlineExceeded)))
	assert.Equal(t, ErrorProviderOutage, ClassifyTransport(errors.New("connection refused")))
}

func TestOutcome(t *testing.T) {
	found := Found(42)
	assert.True(t, found.Found)
	assert.Equal(t, 42, found.Value)
	assert.False(t, found.IsNotFound())

	missing := Missing[int]()
	assert.True(t, missing.IsNotFound())
	assert.False(t, missing.IsUnavailable())

	off := Degraded[int](ErrorUnavailable, nil)
	assert.True(t, off.IsUnavailable())

	derived := DegradedFrom[int](NewSourceError(ErrorUnauthorized, SourceSecondaryProvider, "bad key", nil))
	assert.Equal(t, ErrorUnauthorized, derived.Degraded)
	assert.Error(t, derived.Err)
}
