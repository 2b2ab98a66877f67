package metrics

import (
	"net/http"
	"strings"

	"github.com/Heidric/guest-self-service/pkg/docid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the guest API.
type Metrics struct {
	DocumentValidations *prometheus.CounterVec
	DoorUnlocks         *prometheus.CounterVec
	DoorCodesIssued     prometheus.Counter
	IncidentsCreated    *prometheus.CounterVec
	ContractsSigned     prometheus.Counter
	DashboardClients    prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		DocumentValidations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guest_document_validations_total",
			Help: "Identity document validations by document type and outcome code",
		}, []string{"type", "outcome"}),
		DoorUnlocks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guest_door_unlocks_total",
			Help: "Door unlock attempts by result",
		}, []string{"result"}),
		DoorCodesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "guest_door_codes_issued_total",
			Help: "One-time door codes issued to guests",
		}),
		IncidentsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guest_incidents_created_total",
			Help: "Incidents reported by guests by category",
		}, []string{"category"}),
		ContractsSigned: f.NewCounter(prometheus.CounterOpts{
			Name: "guest_contracts_signed_total",
			Help: "Rental contracts signed",
		}),
		DashboardClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "guest_dashboard_ws_clients",
			Help: "Currently connected dashboard websocket clients",
		}),
		gatherer: reg,
	}
}

func (m *Metrics) DocumentValidated(documentType string, res docid.Result) {
	outcome := "valid"
	if !res.Valid {
		outcome = string(res.Code)
	}

	t := strings.ToUpper(strings.TrimSpace(documentType))
	if t != docid.TypeDNI && t != docid.TypeNIE {
		t = "OTHER"
	}

	m.DocumentValidations.WithLabelValues(t, outcome).Inc()
}

func (m *Metrics) DoorUnlocked(result string) {
	m.DoorUnlocks.WithLabelValues(result).Inc()
}

func (m *Metrics) DoorCodeIssued() {
	m.DoorCodesIssued.Inc()
}

func (m *Metrics) IncidentCreated(category string) {
	m.IncidentsCreated.WithLabelValues(category).Inc()
}

func (m *Metrics) ContractSigned() {
	m.ContractsSigned.Inc()
}

func (m *Metrics) DashboardClientConnected() {
	m.DashboardClients.Inc()
}

func (m *Metrics) DashboardClientDisconnected() {
	m.DashboardClients.Dec()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
