package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Heidric/guest-self-service/pkg/docid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDocumentValidated(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.DocumentValidated("dni", docid.ValidateDNI("12345678Z"))
	m.DocumentValidated("DNI", docid.ValidateDNI("12345678A"))
	m.DocumentValidated("passport", docid.ValidateDocument("passport", "AB1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentValidations.WithLabelValues("DNI", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentValidations.WithLabelValues("DNI", string(docid.CodeLetterMismatch))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentValidations.WithLabelValues("OTHER", "valid")))
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncidentCreated("noise")
	m.DoorUnlocked("ok")
	m.ContractSigned()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `guest_incidents_created_total{category="noise"} 1`)
	assert.Contains(t, w.Body.String(), `guest_door_unlocks_total{result="ok"} 1`)
	assert.Contains(t, w.Body.String(), "guest_contracts_signed_total 1")
}
