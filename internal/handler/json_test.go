package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "calendar date", input: `"2026-03-17"`, want: time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 is normalised to UTC", input: `"2026-03-17T02:00:00+02:00"`, want: time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)},
		{name: "null", input: `null`},
		{name: "empty", input: `""`},
		{name: "day first", input: `"17/03/2026"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Equal(tt.want), "got %v", d.Time)
		})
	}
}

func TestDate_Ptr(t *testing.T) {
	assert.Nil(t, Date{}.Ptr())

	d := Date{Time: time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)}
	require.NotNil(t, d.Ptr())
	assert.True(t, d.Ptr().Equal(d.Time))
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	t.Run("empty body is allowed", func(t *testing.T) {
		var b body
		req := httptest.NewRequest("POST", "/", nil)
		assert.NoError(t, decodeJSON(httptest.NewRecorder(), req, &b))
	})

	t.Run("trailing data", func(t *testing.T) {
		var b body
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		err := decodeJSON(httptest.NewRecorder(), req, &b)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("oversized body", func(t *testing.T) {
		var b body
		payload := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(payload))
		err := decodeJSON(httptest.NewRecorder(), req, &b)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.Contains(t, domain.ErrorMessage(err), "too large")
	})
}
