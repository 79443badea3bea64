package mq_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunamart/eshop/internal/storage/mq"
	"github.com/lunamart/eshop/pkg/correlationid"
)

func TestHeadersRoundTrip(t *testing.T) {
	t.Run("Should carry correlation id through headers", func(t *testing.T) {
		ctx := correlationid.NewContext(context.Background(), "corr-123")

		headers := mq.BuildHeaders(ctx)
		require.Contains(t, headers, correlationid.Header)

		extracted := mq.ExtractContextFromHeaders(context.Background(), headers)
		correlationID, ok := correlationid.FromContext(extracted)
		assert.True(t, ok)
		assert.Equal(t, "corr-123", correlationID)
	})

	t.Run("Should build empty headers without correlation id", func(t *testing.T) {
		headers := mq.BuildHeaders(context.Background())
		assert.NotContains(t, headers, correlationid.Header)
	})

	t.Run("Should leave context unchanged for empty headers", func(t *testing.T) {
		ctx := mq.ExtractContextFromHeaders(context.Background(), map[string]string{})
		_, ok := correlationid.FromContext(ctx)
		assert.False(t, ok)
	})
}
