// Package metrics expone métricas Prometheus del motor de inventario.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
)

var _ inventory.ClampRecorder = (*ClampCounter)(nil)

// ClampCounter cuenta las salidas recortadas en cero por sede, junto con las unidades faltantes.
type ClampCounter struct {
	events  *prometheus.CounterVec
	missing *prometheus.CounterVec
}

// NewClampCounter registra los contadores en reg.
func NewClampCounter(reg prometheus.Registerer) *ClampCounter {
	c := &ClampCounter{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_clamp_events_total",
			Help: "Salidas de stock recortadas en cero.",
		}, []string{"location_id"}),
		missing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_clamp_missing_units_total",
			Help: "Unidades solicitadas que no existían al recortar en cero.",
		}, []string{"location_id"}),
	}
	reg.MustRegister(c.events, c.missing)
	return c
}

// RecordClamp implementa inventory.ClampRecorder.
func (c *ClampCounter) RecordClamp(locationID string, requested, available int64) {
	c.events.WithLabelValues(locationID).Inc()
	if diff := requested - available; diff > 0 {
		c.missing.WithLabelValues(locationID).Add(float64(diff))
	}
}
