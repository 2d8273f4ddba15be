package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"invadmin/internal/models"
)

// OutcomeDeleted resultado usado por la purga de usuarios
const OutcomeDeleted = "deleted"

// JobMetrics métricas de una ejecución, sobre un registry propio que solo
// se empuja al Pushgateway.
type JobMetrics struct {
	registry *prometheus.Registry
	job      string
	runID    string

	// RecordsTotal registros procesados por resultado
	// Labels: outcome (inserted|updated|unchanged|failed_validation|failed_write|deleted)
	// El job no es label: el Pushgateway lo agrega como clave de agrupación.
	RecordsTotal *prometheus.CounterVec

	// RowsRead filas leídas de la fuente
	RowsRead prometheus.Gauge

	// DurationSeconds duración total de la ejecución
	DurationSeconds prometheus.Gauge

	// LastSuccess timestamp unix de la última ejecución sin error de lote
	LastSuccess prometheus.Gauge
}

// NewJobMetrics crea las métricas de un job sobre un registry nuevo
func NewJobMetrics(job, runID string) *JobMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &JobMetrics{
		registry: reg,
		job:      SanitizeJobName(job),
		runID:    runID,
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invadmin_job_records_total",
				Help: "Total de registros procesados por resultado",
			},
			[]string{"outcome"},
		),
		RowsRead: factory.NewGauge(prometheus.GaugeOpts{
			Name: "invadmin_job_rows_read",
			Help: "Filas leídas de la fuente en la última ejecución",
		}),
		DurationSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "invadmin_job_duration_seconds",
			Help: "Duración de la última ejecución en segundos",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "invadmin_job_last_success_timestamp_seconds",
			Help: "Timestamp unix de la última ejecución completada",
		}),
	}
}

// Job nombre saneado del job
func (m *JobMetrics) Job() string { return m.job }

// Registry registry propio de la ejecución
func (m *JobMetrics) Registry() *prometheus.Registry { return m.registry }

// Add suma n registros con el resultado dado
func (m *JobMetrics) Add(outcome string, n int) {
	if n <= 0 {
		return
	}
	m.RecordsTotal.WithLabelValues(outcome).Add(float64(n))
}

// Observe vuelca un resumen de importación a las métricas
func (m *JobMetrics) Observe(s models.Summary) {
	for _, o := range models.Outcomes {
		m.Add(string(o), s.Count(o))
	}
	m.RowsRead.Set(float64(s.RowsRead))
	m.DurationSeconds.Set(s.Duration.Seconds())
}

// MarkSuccess registra la finalización del job
func (m *JobMetrics) MarkSuccess(at time.Time) {
	m.LastSuccess.Set(float64(at.Unix()))
}

// Push envía las métricas al Pushgateway agrupadas por run_id.
// Sin URL no hace nada.
func (m *JobMetrics) Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	err := push.New(url, m.job).
		Grouping("run_id", m.runID).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("error pushing metrics: %w", err)
	}
	return nil
}

// SanitizeJobName normaliza el nombre del job para usarlo como label:
// minúsculas y cualquier carácter fuera de [a-z0-9_] reemplazado por '_'
func SanitizeJobName(job string) string {
	if job == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(job) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
