package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	IncidentCategoryCleaning    = "cleaning"
	IncidentCategoryMaintenance = "maintenance"
	IncidentCategoryNoise       = "noise"
	IncidentCategoryAppliance   = "appliance"
	IncidentCategoryOther       = "other"

	IncidentStatusOpen       = "Open"
	IncidentStatusInProgress = "InProgress"
	IncidentStatusResolved   = "Resolved"
)

var AllowedIncidentCategories = []string{
	IncidentCategoryCleaning, IncidentCategoryMaintenance, IncidentCategoryNoise,
	IncidentCategoryAppliance, IncidentCategoryOther,
}

var AllowedIncidentStatuses = []string{
	IncidentStatusOpen, IncidentStatusInProgress, IncidentStatusResolved,
}

const maxDescriptionLength = 2000

type Incident struct {
	ID          string    `db:"id"`
	StayID      string    `db:"stay_id"`
	GuestID     string    `db:"guest_id"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	HandledBy   *string   `db:"handled_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type CreateIncidentDTO struct {
	Validator

	Category    string `json:"category"`
	Description string `json:"description"`
}

func (dto CreateIncidentDTO) Validate() map[string]string {
	errs := map[string]string{}

	if dto.Category == "" {
		errs["category"] = ErrEmptyField
	} else if !inStringSlice(dto.Category, AllowedIncidentCategories) {
		errs["category"] = ErrInvalidField
	}

	if strings.TrimSpace(dto.Description) == "" {
		errs["description"] = ErrEmptyField
	} else if utf8.RuneCountInString(dto.Description) > maxDescriptionLength {
		errs["description"] = ErrInvalidField
	}

	return errs
}

type UpdateIncidentDTO struct {
	Validator

	Status string `json:"status"`
}

func (dto UpdateIncidentDTO) Validate() map[string]string {
	errs := map[string]string{}
	if dto.Status == "" {
		errs["status"] = ErrEmptyField
	} else if !inStringSlice(dto.Status, AllowedIncidentStatuses) {
		errs["status"] = ErrInvalidField
	}
	return errs
}

type IncidentItem struct {
	ID          string    `json:"id"`
	StayID      string    `json:"stayId"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	HandledBy   string    `json:"handledBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewIncidentItem(in Incident) IncidentItem {
	item := IncidentItem{
		ID:          in.ID,
		StayID:      in.StayID,
		Category:    in.Category,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   in.CreatedAt,
	}
	if in.HandledBy != nil {
		item.HandledBy = *in.HandledBy
	}
	return item
}

type IncidentListResponse struct {
	Items      []IncidentItem `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type IncidentListQuery struct {
	Validator
	Page     *int   `json:"-"`
	PageSize *int   `json:"-"`
	Status   string `json:"-"`
	Category string `json:"-"`
	StayID   string `json:"-"`
}

func (q IncidentListQuery) Validate() map[string]string {
	errs := map[string]string{}

	if q.Page != nil {
		if *q.Page < 1 || *q.Page > 1000 {
			errs["page"] = ErrInvalidField
		}
	}
	if q.PageSize != nil {
		if *q.PageSize < 10 || *q.PageSize > 500 {
			errs["pageSize"] = ErrInvalidField
		}
	}
	if q.Status != "" && !inStringSlice(q.Status, AllowedIncidentStatuses) {
		errs["status"] = ErrInvalidField
	}
	if q.Category != "" && !inStringSlice(q.Category, AllowedIncidentCategories) {
		errs["category"] = ErrInvalidField
	}
	return errs
}
