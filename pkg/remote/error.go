package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by both backends. The PostgREST ones are what the hosted
// service returns; the SQL backend produces the same codes.
const (
	CodeNoRows       = "PGRST116" // single-row request matched zero rows
	CodeUniqueViol   = "23505"
	CodeInvalidGrant = "invalid_grant"
	CodeUnknownTable = "42P01"
	CodeBadQuery     = "PGRST100"
)

// ErrNotAuthenticated is returned by operations that need a session when there is none
var ErrNotAuthenticated = errors.New("not authenticated")

// Error is a backend error as reported by the remote service
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// NoRows builds the error returned when a single row was required
func NoRows(table string) *Error {
	return &Error{
		Code:    CodeNoRows,
		Message: "JSON object requested, multiple (or no) rows returned",
		Details: fmt.Sprintf("The result contains 0 rows (table %s)", table),
		Status:  http.StatusNotAcceptable,
	}
}

func codeOf(err error) (string, int, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Code, re.Status, true
	}
	return "", 0, false
}

// IsNoRows reports whether err is the distinguished "no row found" error
func IsNoRows(err error) bool {
	code, _, ok := codeOf(err)
	return ok && code == CodeNoRows
}

// IsConflict reports a unique-constraint violation
func IsConflict(err error) bool {
	code, status, ok := codeOf(err)
	return ok && (code == CodeUniqueViol || status == http.StatusConflict)
}

// IsUnauthorized reports a rejected or missing credential
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	code, status, ok := codeOf(err)
	return ok && (status == http.StatusUnauthorized || code == CodeInvalidGrant)
}
