// Package metrics define las métricas Prometheus del bridge.
// Viven en un paquete propio para que services, steam y middlewares las usen
// sin ciclos de import.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "steambridge"

var (
	// HTTP
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Número total de requests procesadas",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latencia de los requests HTTP",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_inflight_requests",
		Help:      "Requests en vuelo",
	})

	// Bridge: resultado por operación (authorize, callback, token, userinfo)
	BridgeOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bridge_operations_total",
		Help:      "Operaciones del bridge por resultado",
	}, []string{"op", "result"})

	// Llamadas a Steam (check_authentication, player_summaries, profile_items)
	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_duration_seconds",
		Help:      "Latencia de llamadas a Steam",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"op", "result"})
)

// Register registra todas las métricas en reg (default si nil). Si storeLen no es
// nil, expone también el gauge de registros de correlación vivos.
// Los duplicados se ignoran, así que es seguro llamarla más de una vez.
func Register(reg prometheus.Registerer, storeLen func() int) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPInflight,
		BridgeOperations,
		UpstreamDuration,
	}
	if storeLen != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_records",
			Help:      "Registros de correlación vivos en el store",
		}, func() float64 { return float64(storeLen()) }))
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler devuelve el handler de /metrics para el gatherer dado (default si nil).
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveBridge cuenta el resultado de una operación del bridge.
func ObserveBridge(op, result string) {
	BridgeOperations.WithLabelValues(op, result).Inc()
}

// ObserveUpstream registra la latencia de una llamada a Steam.
func ObserveUpstream(op string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	UpstreamDuration.WithLabelValues(op, result).Observe(d.Seconds())
}
