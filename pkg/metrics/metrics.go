// Package metrics содержит prometheus-коллекторы сервиса.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор коллекторов сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbPoolOpen      *prometheus.GaugeVec
	dbPoolInUse     *prometheus.GaugeVec
	dbPoolIdle      *prometheus.GaugeVec

	admissionsTotal    *prometheus.CounterVec
	admissionRetries   prometheus.Counter
	capacityRejections prometheus.Counter
}

// New регистрирует и возвращает коллекторы сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		dbPoolOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"db_service"}),

		dbPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of database connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db_service"}),

		dbPoolIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"db_service"}),

		admissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_admissions_total",
			Help:        "Booking admission attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		admissionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "booking_admission_tx_retries_total",
			Help:        "Serialization retries performed during booking admission",
			ConstLabels: constLabels,
		}),

		capacityRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "booking_capacity_rejections_total",
			Help:        "Booking attempts rejected due to insufficient capacity",
			ConstLabels: constLabels,
		}),
	}
}

// ObserveHTTPRequest записывает метрики завершённого HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery записывает длительность запроса к БД
func (m *Metrics) ObserveDBQuery(service, operation string, duration time.Duration) {
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет gauge-метрики connection pool-а
func (m *Metrics) SetDBPoolStats(service string, open, inUse, idle int) {
	m.dbPoolOpen.WithLabelValues(service).Set(float64(open))
	m.dbPoolInUse.WithLabelValues(service).Set(float64(inUse))
	m.dbPoolIdle.WithLabelValues(service).Set(float64(idle))
}

// IncAdmission увеличивает счётчик попыток бронирования по исходу
// (admitted / admitted_overbooked / rejected_capacity / rejected_rules / failed)
func (m *Metrics) IncAdmission(outcome string) {
	m.admissionsTotal.WithLabelValues(outcome).Inc()
}

// IncAdmissionRetry увеличивает счётчик повторов сериализуемой транзакции
func (m *Metrics) IncAdmissionRetry() {
	m.admissionRetries.Inc()
}

// IncCapacityRejection увеличивает счётчик отказов по вместимости
func (m *Metrics) IncCapacityRejection() {
	m.capacityRejections.Inc()
}
