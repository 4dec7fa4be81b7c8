package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestWriteErrorUsesAppErrorMapping(t *testing.T) {
	rec := httptest.NewRecorder()
	appErr := NewAppError("order_not_found", "order not found", http.StatusNotFound, errors.New("no rows"))
	appErr.Details = map[string]string{"order_id": "ord-1"}

	WriteError(rec, appErr)

	require.Equal(t, http.StatusNotFound, rec.Code)
	got := decodeErrorBody(t, rec)
	require.Equal(t, "order_not_found", got.Code)
	require.Equal(t, "order not found", got.Message)
	require.NotNil(t, got.Details)
}

func TestWriteErrorUnwrapsNestedAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := errors.Join(errors.New("context"), NewAppError("business_not_found", "business not found", http.StatusNotFound, nil))

	WriteError(rec, wrapped)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "business_not_found", decodeErrorBody(t, rec).Code)
}

func TestWriteErrorMasksPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, errors.New("pool exhausted: secret dsn"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	raw := rec.Body.String()
	require.NotContains(t, raw, "secret")
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	require.Equal(t, "internal", body.Error.Code)
	require.Equal(t, "internal error", body.Error.Message)
}

func TestParsePaginationClampsPerPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=3&limit=5000", nil)

	page, perPage := ParsePagination(r, 20)

	require.Equal(t, 3, page)
	require.Equal(t, MaxPerPage, perPage)
}

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=-1&limit=abc", nil)

	page, perPage := ParsePagination(r, 20)

	require.Equal(t, 1, page)
	require.Equal(t, 20, perPage)
}
