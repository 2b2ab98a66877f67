package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginDTOValidate(t *testing.T) {
	dto := LoginDTO{}
	errs := dto.Validate()
	assert.Equal(t, ErrEmptyField, errs["reservationCode"])
	assert.Equal(t, ErrEmptyField, errs["accessCode"])

	dto = LoginDTO{ReservationCode: strings.Repeat("H", 33), AccessCode: "1234"}
	assert.Equal(t, map[string]string{"reservationCode": ErrInvalidField}, dto.Validate())

	dto = LoginDTO{ReservationCode: "HMABC123", AccessCode: "1234"}
	assert.Empty(t, dto.Validate())
}

func TestRegisterDocumentDTOValidate(t *testing.T) {
	valid := func() RegisterDocumentDTO {
		return RegisterDocumentDTO{
			DocumentType:   "DNI",
			DocumentNumber: "12345678Z",
			Nationality:    "ES",
			FirstName:      "Ana",
			LastName:       "Garcia",
			BirthDate:      "1990-04-12",
		}
	}

	tests := []struct {
		name   string
		mutate func(*RegisterDocumentDTO)
		field  string
		code   string
	}{
		{"missing type", func(d *RegisterDocumentDTO) { d.DocumentType = " " }, "documentType", ErrEmptyField},
		{"long number", func(d *RegisterDocumentDTO) { d.DocumentNumber = strings.Repeat("1", 65) }, "documentNumber", ErrInvalidField},
		{"nationality not iso", func(d *RegisterDocumentDTO) { d.Nationality = "ESP" }, "nationality", ErrInvalidField},
		{"missing last name", func(d *RegisterDocumentDTO) { d.LastName = "" }, "lastName", ErrEmptyField},
		{"bad birth date", func(d *RegisterDocumentDTO) { d.BirthDate = "12/04/1990" }, "birthDate", ErrInvalidField},
		{"future birth date", func(d *RegisterDocumentDTO) {
			d.BirthDate = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
		}, "birthDate", ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := valid()
			tt.mutate(&dto)
			assert.Equal(t, tt.code, dto.Validate()[tt.field])
		})
	}

	t.Run("valid", func(t *testing.T) {
		dto := valid()
		assert.Empty(t, dto.Validate())
		assert.Equal(t, 1990, dto.ParsedBirthDate().Year())
	})

	t.Run("check letter is not checked here", func(t *testing.T) {
		dto := valid()
		dto.DocumentNumber = "12345678A"
		assert.Empty(t, dto.Validate())
	})
}

func TestUpdatePreferencesDTOValidate(t *testing.T) {
	dto := UpdatePreferencesDTO{ArrivalTime: "25:00", Language: "xx", Phone: " ", ExtraBeds: 3, Notes: strings.Repeat("n", 501)}
	errs := dto.Validate()
	assert.Equal(t, ErrInvalidField, errs["arrivalTime"])
	assert.Equal(t, ErrInvalidField, errs["language"])
	assert.Equal(t, ErrEmptyField, errs["phone"])
	assert.Equal(t, ErrInvalidField, errs["extraBeds"])
	assert.Equal(t, ErrInvalidField, errs["notes"])

	dto = UpdatePreferencesDTO{ArrivalTime: "16:45", Language: "ES", Phone: "600123456", ExtraBeds: 2, Notes: strings.Repeat("ñ", 500)}
	assert.Empty(t, dto.Validate())
}

func TestSignContractDTOValidate(t *testing.T) {
	dto := SignContractDTO{FullName: "Ana Garcia"}
	assert.Equal(t, map[string]string{"acceptTerms": ErrInvalidField}, dto.Validate())

	dto.AcceptTerms = true
	assert.Empty(t, dto.Validate())
}

func TestProvisionGuestDTOValidate(t *testing.T) {
	dto := ProvisionGuestDTO{Email: "not-an-email"}
	errs := dto.Validate()
	assert.Equal(t, ErrEmptyField, errs["stayId"])
	assert.Equal(t, ErrInvalidField, errs["email"])
	assert.Equal(t, ErrEmptyField, errs["firstName"])

	dto = ProvisionGuestDTO{StayID: "s1", Email: "ana@example.com", FirstName: "Ana"}
	assert.Empty(t, dto.Validate())
}

func TestIncidentDTOs(t *testing.T) {
	assert.Equal(t, ErrInvalidField, CreateIncidentDTO{Category: "wifi", Description: "x"}.Validate()["category"])
	assert.Equal(t, ErrEmptyField, CreateIncidentDTO{Category: IncidentCategoryNoise}.Validate()["description"])
	assert.Empty(t, CreateIncidentDTO{Category: IncidentCategoryNoise, Description: "Party next door"}.Validate())

	assert.Equal(t, ErrInvalidField, UpdateIncidentDTO{Status: "closed"}.Validate()["status"])
	assert.Empty(t, UpdateIncidentDTO{Status: IncidentStatusInProgress}.Validate())

	small, big := 5, 20
	assert.Equal(t, ErrInvalidField, IncidentListQuery{PageSize: &small}.Validate()["pageSize"])
	assert.Empty(t, IncidentListQuery{PageSize: &big, Status: IncidentStatusOpen}.Validate())
}

func TestChecklistAndStay(t *testing.T) {
	assert.False(t, Checklist{Document: true, Preferences: true}.Complete())
	assert.True(t, Checklist{Document: true, Preferences: true, Contract: true}.Complete())

	in := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	out := time.Date(2025, 7, 8, 11, 0, 0, 0, time.UTC)
	st := Stay{CheckIn: in, CheckOut: out}
	assert.True(t, st.Within(in))
	assert.True(t, st.Within(out))
	assert.False(t, st.Within(in.Add(-time.Second)))
	assert.False(t, st.Within(out.Add(time.Second)))
}
