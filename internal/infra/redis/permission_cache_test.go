package redis

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/userdeskio/api/internal/metrics"
)

func lookupCount(t *testing.T, result string) float64 {
	t.Helper()
	return testutil.ToFloat64(metrics.PermissionCacheTotal.WithLabelValues(result))
}

func TestRecordLookupClassifiesOutcomes(t *testing.T) {
	hits := lookupCount(t, "hit")
	misses := lookupCount(t, "miss")
	failures := lookupCount(t, "error")

	recordLookup(nil)
	recordLookup(ErrCacheMiss)
	recordLookup(errors.New("dial tcp: connection refused"))

	assert.Equal(t, hits+1, lookupCount(t, "hit"))
	assert.Equal(t, misses+1, lookupCount(t, "miss"))
	assert.Equal(t, failures+1, lookupCount(t, "error"))
}
