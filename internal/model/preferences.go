package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

var AllowedLanguages = []string{"es", "en", "fr", "de", "it", "pt", "ca"}

const (
	arrivalTimeLayout = "15:04"
	maxExtraBeds      = 2
	maxNotesLength    = 500
)

type Preferences struct {
	GuestID     string    `db:"guest_id"`
	ArrivalTime string    `db:"arrival_time"`
	Language    string    `db:"language"`
	Phone       string    `db:"phone"`
	ExtraBeds   int       `db:"extra_beds"`
	Notes       string    `db:"notes"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type UpdatePreferencesDTO struct {
	Validator

	ArrivalTime string `json:"arrivalTime"`
	Language    string `json:"language"`
	Phone       string `json:"phone"`
	ExtraBeds   int    `json:"extraBeds"`
	Notes       string `json:"notes"`
}

// Validate leaves the phone number shape to the guest service, which knows the default region.
func (dto *UpdatePreferencesDTO) Validate() map[string]string {
	errs := map[string]string{}

	if dto.ArrivalTime == "" {
		errs["arrivalTime"] = ErrEmptyField
	} else if _, err := time.Parse(arrivalTimeLayout, dto.ArrivalTime); err != nil {
		errs["arrivalTime"] = ErrInvalidField
	}

	if dto.Language == "" {
		errs["language"] = ErrEmptyField
	} else if !inStringSlice(strings.ToLower(dto.Language), AllowedLanguages) {
		errs["language"] = ErrInvalidField
	}

	if strings.TrimSpace(dto.Phone) == "" {
		errs["phone"] = ErrEmptyField
	}

	if dto.ExtraBeds < 0 || dto.ExtraBeds > maxExtraBeds {
		errs["extraBeds"] = ErrInvalidField
	}

	if utf8.RuneCountInString(dto.Notes) > maxNotesLength {
		errs["notes"] = ErrInvalidField
	}

	return errs
}

type PreferencesResponse struct {
	ArrivalTime string    `json:"arrivalTime"`
	Language    string    `json:"language"`
	Phone       string    `json:"phone"`
	ExtraBeds   int       `json:"extraBeds"`
	Notes       string    `json:"notes,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
