package model

import (
	"strings"
	"time"
)

const (
	ContractStatusPending = "pending"
	ContractStatusSigned  = "signed"
)

type Contract struct {
	ID             string    `db:"id"`
	StayID         string    `db:"stay_id"`
	GuestID        string    `db:"guest_id"`
	SignerName     string    `db:"signer_name"`
	DocumentType   string    `db:"document_type"`
	DocumentNumber string    `db:"document_number"`
	SignedAt       time.Time `db:"signed_at"`
}

type SignContractDTO struct {
	Validator

	FullName    string `json:"fullName"`
	AcceptTerms bool   `json:"acceptTerms"`
}

func (dto *SignContractDTO) Validate() map[string]string {
	errs := map[string]string{}

	if name := strings.TrimSpace(dto.FullName); name == "" {
		errs["fullName"] = ErrEmptyField
	} else if len(name) > 200 {
		errs["fullName"] = ErrInvalidField
	}

	if !dto.AcceptTerms {
		errs["acceptTerms"] = ErrInvalidField
	}

	return errs
}

type ContractResponse struct {
	Status     string     `json:"status"`
	SignerName string     `json:"signerName,omitempty"`
	Document   string     `json:"document,omitempty"`
	SignedAt   *time.Time `json:"signedAt,omitempty"`
}
