// Package handler contains HTTP handlers for the plantcheck API.
//
// This file holds the JSON request and response helpers shared by every
// handler.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/google/uuid"
)

// maxBodyBytes limits request bodies. Checklist submissions are the
// largest payload and stay well below this.
const maxBodyBytes = 1 << 20

const dateLayout = "2006-01-02"

// Pagination defaults for list endpoints.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into dst. Unknown fields and trailing
// data are rejected. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const op = "http.decode"

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Invalid(op, "request body is too large")
		}
		var dateErr *dateError
		if errors.As(err, &dateErr) {
			return domain.Invalid(op, dateErr.Error())
		}
		return domain.Invalid(op, "invalid JSON body: "+err.Error())
	}
	if dec.More() {
		return domain.Invalid(op, "request body must contain a single JSON object")
	}
	return nil
}

// pathUUID parses the named path value as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Invalid("http.path", fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// listParams reads limit and offset query parameters.
func listParams(r *http.Request) (domain.ListParams, error) {
	const op = "http.list_params"

	params := domain.ListParams{Limit: defaultLimit}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return params, domain.Invalid(op, "limit must be a positive integer")
		}
		params.Limit = int32(min(n, maxLimit))
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return params, domain.Invalid(op, "offset must be a non-negative integer")
		}
		params.Offset = int32(n)
	}
	return params, nil
}

// =============================================================================
// Date
// =============================================================================

// Date is a calendar date in requests. It accepts "2006-01-02" or RFC 3339.
type Date struct {
	time.Time
}

type dateError struct {
	value string
}

func (e *dateError) Error() string {
	return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", e.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return &dateError{value: s}
	}
	d.Time = t.UTC()
	return nil
}

// Ptr returns nil for the zero date.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
