package model

import (
	"net/mail"
	"strings"
	"time"
)

const (
	RoleGuest = "Guest"
	RoleHost  = "Host"
)

const birthDateLayout = "2006-01-02"

type Guest struct {
	ID              string `db:"id" json:"id"`
	StayID          string `db:"stay_id" json:"stayId"`
	Email           string `db:"email" json:"email"`
	FirstName       string `db:"first_name" json:"firstName"`
	LastName        string `db:"last_name" json:"lastName"`
	Role            string `db:"role" json:"role"`
	ReservationCode string `db:"reservation_code" json:"reservationCode"`
	AccessCodeHash  string `db:"access_code_hash" json:"-"`
}

// Document is the identity document a guest registered for the stay.
type Document struct {
	GuestID      string    `db:"guest_id"`
	Type         string    `db:"document_type"`
	Number       string    `db:"document_number"`
	Nationality  string    `db:"nationality"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	BirthDate    time.Time `db:"birth_date"`
	RegisteredAt time.Time `db:"registered_at"`
}

type RegisterDocumentDTO struct {
	Validator

	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	Nationality    string `json:"nationality"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	BirthDate      string `json:"birthDate"`
}

// Validate checks presence and shape of the fields. Check letters are verified
// by the guest service so the caller gets the validator's own message.
func (dto *RegisterDocumentDTO) Validate() map[string]string {
	errs := map[string]string{}

	if t := strings.TrimSpace(dto.DocumentType); t == "" {
		errs["documentType"] = ErrEmptyField
	} else if len(t) > 32 {
		errs["documentType"] = ErrInvalidField
	}

	if len(dto.DocumentNumber) > 64 {
		errs["documentNumber"] = ErrInvalidField
	}

	if n := strings.TrimSpace(dto.Nationality); n == "" {
		errs["nationality"] = ErrEmptyField
	} else if len(n) != 2 {
		errs["nationality"] = ErrInvalidField
	}

	if strings.TrimSpace(dto.FirstName) == "" {
		errs["firstName"] = ErrEmptyField
	}
	if strings.TrimSpace(dto.LastName) == "" {
		errs["lastName"] = ErrEmptyField
	}

	if dto.BirthDate == "" {
		errs["birthDate"] = ErrEmptyField
	} else if bd, err := time.Parse(birthDateLayout, dto.BirthDate); err != nil || bd.After(time.Now()) {
		errs["birthDate"] = ErrInvalidField
	}

	return errs
}

// ParsedBirthDate must only be called after a successful Validate.
func (dto *RegisterDocumentDTO) ParsedBirthDate() time.Time {
	bd, _ := time.Parse(birthDateLayout, dto.BirthDate)
	return bd
}

type ValidateDocumentDTO struct {
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
}

type DocumentResponse struct {
	Type         string    `json:"type"`
	Number       string    `json:"number"`
	Nationality  string    `json:"nationality"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type GuestProfileResponse struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	FirstName   string               `json:"firstName"`
	LastName    string               `json:"lastName"`
	Stay        *StaySummary         `json:"stay,omitempty"`
	Document    *DocumentResponse    `json:"document,omitempty"`
	Preferences *PreferencesResponse `json:"preferences,omitempty"`
}

type StaySummary struct {
	ID           string    `json:"id"`
	PropertyName string    `json:"propertyName"`
	CheckIn      time.Time `json:"checkIn"`
	CheckOut     time.Time `json:"checkOut"`
}

type ProvisionGuestDTO struct {
	Validator

	StayID    string `json:"stayId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (dto *ProvisionGuestDTO) Validate() map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(dto.StayID) == "" {
		errs["stayId"] = ErrEmptyField
	}
	if strings.TrimSpace(dto.Email) == "" {
		errs["email"] = ErrEmptyField
	} else if _, err := mail.ParseAddress(dto.Email); err != nil {
		errs["email"] = ErrInvalidField
	}
	if strings.TrimSpace(dto.FirstName) == "" {
		errs["firstName"] = ErrEmptyField
	}

	return errs
}

// ProvisionGuestResponse is the only place the plain access code is ever returned.
type ProvisionGuestResponse struct {
	GuestID         string `json:"guestId"`
	ReservationCode string `json:"reservationCode"`
	AccessCode      string `json:"accessCode"`
}
