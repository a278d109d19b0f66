package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusTeapot, map[string]int{"id": 1}))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())
}

func TestErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body Response
		want string
	}{
		{"general", GeneralError("Student with id 9 not found"), `{"error":"Student with id 9 not found"}`},
		{"formatted", GeneralErrorf("Email '%s' already in use", "a@b.co"), `{"error":"Email 'a@b.co' already in use"}`},
		{"validation", ValidationError([]string{"name is required"}), `{"error":"Validation failed","details":["name is required"]}`},
		{"internal", InternalError(errors.New("boom")), `{"error":"Internal server error","message":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteJSON(rec, http.StatusBadRequest, tt.body))
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
