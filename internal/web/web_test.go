package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"laboratorio3d.cl/rewards/internal/common"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{common.ErrReceiptAlreadyProcessed, http.StatusBadRequest},
		{common.ErrDuplicateRedemption, http.StatusBadRequest},
		{common.ErrPrizeOutOfStock, http.StatusBadRequest},
		{common.ErrReceiptNotFound, http.StatusNotFound},
		{common.ErrUnauthenticated, http.StatusUnauthorized},
		{common.ErrSessionExpired, http.StatusUnauthorized},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrTooManyAttempts, http.StatusTooManyRequests},
		{fmt.Errorf("wrap: %w", common.ErrPrizeNotFound), http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, ts := range tests {
		require.Equal(t, ts.expected, StatusFor(ts.err), "err=%v", ts.err)
	}
}

func TestWriteErrorRedactsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)

	WriteError(rec, req, errors.New("pq: password authentication failed for user lab3d"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "password authentication")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "internal_error", body.Code)
}

func TestWriteErrorDomain(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/canjes", nil)

	WriteError(rec, req, fmt.Errorf("redeem: %w", common.ErrDuplicateRedemption))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "duplicate_redemption", body.Code)
	require.Equal(t, common.ErrDuplicateRedemption.Message, body.Error)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		PrizeID int64 `json:"premio_id"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"premio_id": 7}`))
	var p payload
	require.NoError(t, DecodeJSON(rec, req, &p))
	require.Equal(t, int64(7), p.PrizeID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"premio_id": 7, "extra": 1}`))
	require.ErrorIs(t, DecodeJSON(rec, req, &p), errBadJSON)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"premio_id": 7}{"premio_id": 8}`))
	require.ErrorIs(t, DecodeJSON(rec, req, &p), errBadJSON)
}

func TestBodyLimitFor(t *testing.T) {
	require.Equal(t, int64(6990508)+bodySlack, BodyLimitFor(5<<20))
	require.Equal(t, int64(4)+bodySlack, BodyLimitFor(1))
	require.Equal(t, int64(defaultBodyBytes), BodyLimitFor(0))
}

func TestDecodeJSONBodyLimit(t *testing.T) {
	type payload struct {
		File string `json:"archivo"`
	}
	const maxUpload = 3000
	body := func(n int) *strings.Reader {
		return strings.NewReader(fmt.Sprintf(`{"archivo":"data:image/png;base64,%s"}`, strings.Repeat("A", n)))
	}
	limit := BodyLimitFor(maxUpload)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", body(maxUpload/3*4))
	req = req.WithContext(WithBodyLimit(req.Context(), limit))
	var p payload
	require.NoError(t, DecodeJSON(rec, req, &p))

	req = httptest.NewRequest(http.MethodPost, "/", body(int(limit)))
	req = req.WithContext(WithBodyLimit(req.Context(), limit))
	require.ErrorIs(t, DecodeJSON(rec, req, &p), common.ErrFileTooLarge)

	// Без лимита в контексте действует значение по умолчанию
	req = httptest.NewRequest(http.MethodPost, "/", body(defaultBodyBytes))
	require.ErrorIs(t, DecodeJSON(rec, req, &p), common.ErrFileTooLarge)
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/premios/15", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "15"})
	id, err := PathID(req, "id")
	require.NoError(t, err)
	require.Equal(t, int64(15), id)

	req = mux.SetURLVars(req, map[string]string{"id": "-3"})
	_, err = PathID(req, "id")
	require.ErrorIs(t, err, errBadID)
}

func TestPrincipalContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Nil(t, PrincipalFrom(req.Context()))

	ctx := WithPrincipal(req.Context(), &Principal{UserID: 3, Role: RoleAdmin})
	p := PrincipalFrom(ctx)
	require.NotNil(t, p)
	require.True(t, p.IsAdmin())
	require.False(t, (&Principal{Role: "cliente"}).IsAdmin())
}
