package server

import (
	"encoding/json"
	"net/http"

	"github.com/Heidric/guest-self-service/pkg/docid"
)

const (
	ErrTokenInvalid          = "TOKEN_INVALID"
	ErrGuestNotFound         = "GUEST_NOT_FOUND"
	ErrStayNotFound          = "STAY_NOT_FOUND"
	ErrDocumentLocked        = "DOCUMENT_LOCKED"
	ErrDocumentMissing       = "DOCUMENT_MISSING"
	ErrDocumentChanged       = "DOCUMENT_CHANGED"
	ErrContractAlreadySigned = "CONTRACT_ALREADY_SIGNED"
	ErrChecklistIncomplete   = "CHECKLIST_INCOMPLETE"
	ErrOutsideStay           = "OUTSIDE_STAY"
	ErrIncidentNotFound      = "INCIDENT_NOT_FOUND"
	ErrIncidentResolved      = "INCIDENT_RESOLVED"
	ErrInvalidTransition     = "INVALID_STATUS_TRANSITION"
)

type CommonError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type Validation struct {
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Errors map[string]string `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, res any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

func ParsingError(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, CommonError{
		Title:  "Parsing error occurred",
		Status: http.StatusBadRequest,
		Detail: "Parsing error",
		Code:   "PARSING_ERROR",
	})
}

func ValidationError(w http.ResponseWriter, err map[string]string) {
	writeError(w, http.StatusUnprocessableEntity, Validation{
		Title:  "One or more model validation errors occurred",
		Status: http.StatusUnprocessableEntity,
		Detail: "See the errors property for details",
		Code:   "VALIDATION_ERROR",
		Errors: err,
	})
}

// DocumentError reports a rejected identity document. Detail carries the
// human readable reason and Code the machine readable category.
func DocumentError(w http.ResponseWriter, res docid.Result) {
	writeError(w, http.StatusUnprocessableEntity, CommonError{
		Title:  "Invalid identity document",
		Status: http.StatusUnprocessableEntity,
		Detail: res.Error,
		Code:   string(res.Code),
	})
}

func LogicError(w http.ResponseWriter, code string) {
	writeError(w, http.StatusBadRequest, CommonError{
		Title:  "Logic error occurred",
		Status: http.StatusBadRequest,
		Detail: "Logic error",
		Code:   code,
	})
}

func ConflictError(w http.ResponseWriter, code string) {
	writeError(w, http.StatusConflict, CommonError{
		Title:  "Conflict error",
		Status: http.StatusConflict,
		Detail: "Conflict error",
		Code:   code,
	})
}

func UnauthorizedError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, CommonError{
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: "Unauthorized",
		Code:   "UNAUTHORIZED",
	})
}

func ForbiddenError(w http.ResponseWriter, code string) {
	writeError(w, http.StatusForbidden, CommonError{
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: "Forbidden",
		Code:   code,
	})
}

func NotFoundError(w http.ResponseWriter, code string) {
	writeError(w, http.StatusNotFound, CommonError{
		Title:  "Not found",
		Status: http.StatusNotFound,
		Detail: "Not found",
		Code:   code,
	})
}

func InternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, CommonError{
		Title:  "Resource temporarily unavailable",
		Status: http.StatusInternalServerError,
		Detail: "Resource temporarily unavailable",
		Code:   "UNKNOWN_ERROR",
	})
}

func BadRequestError(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, CommonError{
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: "Bad request",
		Code:   "BAD_REQUEST",
	})
}
