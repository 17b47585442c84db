package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var dest struct {
		Email string `json:"email"`
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"admin@example.com"}`))
	require.NoError(t, ParseJSON(req, &dest))
	assert.Equal(t, "admin@example.com", dest.Email)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	err := ParseJSON(req, &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestParseJSONOrError(t *testing.T) {
	var dest map[string]string
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()

	ok := ParseJSONOrError(rec, req, &dest)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":1`)
}

func TestParsePathInt64(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/user/info/42", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "42"})

	id, err := ParsePathInt64(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParsePathInt64(req, "missing")
	assert.Error(t, err)

	req = mux.SetURLVars(req, map[string]string{"id": "nope"})
	_, err = ParsePathInt64(req, "id")
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantCurrent int
		wantSize    int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "current=3&size=25", 3, 25},
		{"size capped", "current=1&size=5000", 1, 100},
		{"garbage ignored", "current=abc&size=-4", 1, 10},
		{"zero ignored", "current=0&size=0", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/user/page?"+tt.query, nil)
			current, size := ParsePagination(req)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}
