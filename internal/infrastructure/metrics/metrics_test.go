package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClampCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewClampCounter(reg)

	c.RecordClamp("L1", 5, 2)
	c.RecordClamp("L1", 1, 0)
	c.RecordClamp("L2", 3, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("L1")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.missing.WithLabelValues("L1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues("L2")))
}
