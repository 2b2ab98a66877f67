// Package docid validates and formats Spanish identity document numbers
// (DNI and NIE) using the official mod-23 control letter algorithm.
package docid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	TypeDNI = "DNI"
	TypeNIE = "NIE"
)

type ErrorCode string

const (
	CodeFormat         ErrorCode = "FORMAT_ERROR"
	CodeZeroValue      ErrorCode = "ZERO_VALUE_ERROR"
	CodeRange          ErrorCode = "RANGE_ERROR"
	CodeLetterMismatch ErrorCode = "CHECK_LETTER_MISMATCH"
	CodeNumberRequired ErrorCode = "REQUIRED"
)

const (
	maxDNI  = 99999999
	maxNIE  = 9999999
	zeroDNI = "00000000"
	zeroNIE = "0000000"
)

// ControlLetters maps a remainder (number mod 23) to its control letter.
// The order is official; do not reorder.
var ControlLetters = [23]string{
	"T", "R", "W", "A", "G", "M", "Y", "F", "P", "D", "X", "B",
	"N", "J", "Z", "S", "Q", "V", "H", "L", "C", "K", "E",
}

// NIEPrefixDigits replaces the leading NIE letter before computing the control letter.
var NIEPrefixDigits = map[string]string{
	"X": "0",
	"Y": "1",
	"Z": "2",
}

var (
	dniFull   = regexp.MustCompile(`^[0-9]{8}[A-Z]$`)
	dniDigits = regexp.MustCompile(`^[0-9]{8}$`)
	nieFull   = regexp.MustCompile(`^[XYZ][0-9]{7}[A-Z]$`)
	nieDigits = regexp.MustCompile(`^[XYZ][0-9]{7}$`)
)

// Result is the outcome of a validation. Error is set if and only if Valid is false.
type Result struct {
	Valid bool      `json:"valid"`
	Error string    `json:"error,omitempty"`
	Code  ErrorCode `json:"code,omitempty"`
}

func ok() Result { return Result{Valid: true} }

func fail(code ErrorCode, format string, args ...any) Result {
	return Result{Code: code, Error: fmt.Sprintf(format, args...)}
}

// ControlLetter returns the control letter for a non-negative number.
func ControlLetter(n int) string {
	return ControlLetters[n%23]
}

const asciiSpace = " \t\n\v\f\r"

// normalize trims ASCII whitespace and uppercases a-z only. Anything outside
// ASCII is left as is so the shape checks reject it.
func normalize(raw string) string {
	return asciiUpper(strings.Trim(raw, asciiSpace))
}

func asciiUpper(s string) string {
	return strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, s)
}

func ValidateDNI(raw string) Result {
	dni := normalize(raw)

	if !dniFull.MatchString(dni) {
		return fail(CodeFormat, "invalid DNI format: expected 8 digits followed by a letter (e.g. 12345678Z)")
	}

	body, letter := dni[:8], dni[8:]
	if body == zeroDNI {
		return fail(CodeZeroValue, "invalid DNI: number cannot be %s", zeroDNI)
	}

	// Unreachable after the format and zero checks, kept so the error order stays stable.
	n, err := strconv.Atoi(body)
	if err != nil || n < 1 || n > maxDNI {
		return fail(CodeRange, "invalid DNI: number must be between 00000001 and %d", maxDNI)
	}

	if expected := ControlLetter(n); letter != expected {
		return fail(CodeLetterMismatch, "invalid DNI letter: for number %s the correct letter is %s", body, expected)
	}

	return ok()
}

func ValidateNIE(raw string) Result {
	nie := normalize(raw)

	if !nieFull.MatchString(nie) {
		return fail(CodeFormat, "invalid NIE format: expected X, Y or Z followed by 7 digits and a letter (e.g. X1234567L)")
	}

	prefix, body, letter := nie[:1], nie[1:8], nie[8:]
	if body == zeroNIE {
		return fail(CodeZeroValue, "invalid NIE: number cannot be %s", zeroNIE)
	}

	n, err := strconv.Atoi(body)
	if err != nil || n < 1 || n > maxNIE {
		return fail(CodeRange, "invalid NIE: number must be between 0000001 and %d", maxNIE)
	}

	expected, err := nieLetter(prefix, body)
	if err != nil {
		return fail(CodeFormat, "invalid NIE format: %v", err)
	}
	if letter != expected {
		return fail(CodeLetterMismatch, "invalid NIE letter: for %s%s the correct letter is %s", prefix, body, expected)
	}

	return ok()
}

// nieLetter concatenates the prefix digit with the body before parsing,
// so X1234567 is computed as 01234567 and Y1234567 as 11234567.
func nieLetter(prefix, body string) (string, error) {
	digit, found := NIEPrefixDigits[prefix]
	if !found {
		return "", fmt.Errorf("unknown prefix %q", prefix)
	}
	n, err := strconv.Atoi(digit + body)
	if err != nil {
		return "", err
	}
	return ControlLetter(n), nil
}

// ValidateDocument dispatches on the document type. Types other than DNI and NIE
// are accepted as long as the number is not blank.
func ValidateDocument(documentType, documentNumber string) Result {
	switch normalize(documentType) {
	case TypeDNI:
		return ValidateDNI(documentNumber)
	case TypeNIE:
		return ValidateNIE(documentNumber)
	}

	if strings.Trim(documentNumber, asciiSpace) == "" {
		return fail(CodeNumberRequired, "document number is required")
	}
	return ok()
}

// FormatDNI completes a bare 8-digit body with its control letter. A complete
// DNI is returned uppercased without checking its letter.
func FormatDNI(raw string) (string, bool) {
	dni := normalize(raw)

	switch {
	case dniFull.MatchString(dni):
		return dni, true
	case dniDigits.MatchString(dni):
		n, err := strconv.Atoi(dni)
		if err != nil {
			return "", false
		}
		return dni + ControlLetter(n), true
	}

	return "", false
}

// FormatNIE is the NIE counterpart of FormatDNI.
func FormatNIE(raw string) (string, bool) {
	nie := normalize(raw)

	switch {
	case nieFull.MatchString(nie):
		return nie, true
	case nieDigits.MatchString(nie):
		letter, err := nieLetter(nie[:1], nie[1:])
		if err != nil {
			return "", false
		}
		return nie + letter, true
	}

	return "", false
}

// Format dispatches to FormatDNI or FormatNIE. Other document types are
// returned trimmed and uppercased.
func Format(documentType, documentNumber string) (string, bool) {
	switch normalize(documentType) {
	case TypeDNI:
		return FormatDNI(documentNumber)
	case TypeNIE:
		return FormatNIE(documentNumber)
	}

	n := normalize(documentNumber)
	return n, n != ""
}

var separators = strings.NewReplacer(" ", "", "-", "", ".", "", "\t", "")

// Normalize removes spaces, tabs, hyphens and dots anywhere in the input and
// uppercases a-z, so "12.345.678-z" or "12 345678Z" typed by guests reaches
// the validator in one piece. ValidateDNI and ValidateNIE on their own only
// trim the ends.
func Normalize(raw string) string {
	return asciiUpper(separators.Replace(raw))
}

// Mask hides all but the last characters of a document number for logs and
// API responses: 12345678Z -> *****678Z, X1234567L -> X****67L.
func Mask(documentType, documentNumber string) string {
	n := normalize(documentNumber)

	switch normalize(documentType) {
	case TypeDNI:
		if !dniFull.MatchString(n) {
			return "***INVALID***"
		}
		return "*****" + n[5:]
	case TypeNIE:
		if !nieFull.MatchString(n) {
			return "***INVALID***"
		}
		return n[:1] + "****" + n[6:]
	}

	if len(n) <= 3 {
		return strings.Repeat("*", len(n))
	}
	return strings.Repeat("*", len(n)-3) + n[len(n)-3:]
}
