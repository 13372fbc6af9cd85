package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	c := New[string, int]("metrics_test", 1, WithLogger(log.Logger))
	one, _ := counter(1)
	two, _ := counter(2)
	fail := func(context.Context) (int, error) { return 0, errors.New("boom") }

	c.Get(ctx, "a", one)
	c.Get(ctx, "a", one)
	c.Get(ctx, "b", two)
	c.Get(ctx, "c", fail)
	c.Delete("a")
	c.Delete("b")

	events := func(status Status) float64 {
		return testutil.ToFloat64(cacheEvents.WithLabelValues("metrics_test", string(status)))
	}
	assert.Equal(t, 1.0, events(StatusHit))
	assert.Equal(t, 3.0, events(StatusMiss))
	assert.Equal(t, 2.0, events(StatusStored))
	assert.Equal(t, 1.0, events(StatusEvicted))
	assert.Equal(t, 1.0, events(StatusNotStored))
	assert.Equal(t, 1.0, events(StatusDeleted))
	assert.Equal(t, 1.0, events(StatusDeleteMiss))
	assert.Equal(t, 0.0, testutil.ToFloat64(cacheEntries.WithLabelValues("metrics_test")))
}
