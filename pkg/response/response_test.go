package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeta(t *testing.T) {
	assert.Equal(t, 3, NewMeta(1, 20, 41).TotalPages)
	assert.Equal(t, 2, NewMeta(1, 20, 40).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 20, 0).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 0, 10).TotalPages)
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessWithMeta(rec, http.StatusOK, "ok", []int{1, 2}, NewMeta(2, 2, 5))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool  `json:"success"`
		Data    []int `json:"data"`
		Meta    Meta  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []int{1, 2}, body.Data)
	assert.Equal(t, Meta{PageNumber: 2, PageSize: 2, TotalCount: 5, TotalPages: 3}, body.Meta)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		write func(w http.ResponseWriter)
		code  int
		msg   string
	}{
		{func(w http.ResponseWriter) { BadRequest(w, "") }, http.StatusBadRequest, "Bad request"},
		{func(w http.ResponseWriter) { NotFound(w, "gone") }, http.StatusNotFound, "gone"},
		{func(w http.ResponseWriter) { Conflict(w, "") }, http.StatusConflict, "Conflict"},
		{func(w http.ResponseWriter) { Unauthorized(w, "") }, http.StatusUnauthorized, "Unauthorized"},
		{func(w http.ResponseWriter) { InternalServerError(w, "") }, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		tt.write(rec)

		var body Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.code, rec.Code)
		assert.False(t, body.Success)
		assert.Equal(t, tt.msg, body.Message)
	}
}
