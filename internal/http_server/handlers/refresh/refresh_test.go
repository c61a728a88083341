package refresh_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizserver/internal/auth"
	"quizserver/internal/http_server/handlers/refresh"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	pair auth.TokenPair
	err  error
}

func (s *stubRefresher) Refresh(_ context.Context, _ string) (auth.TokenPair, error) {
	return s.pair, s.err
}

func doRequest(t *testing.T, svc *stubRefresher, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := refresh.New(log, validator.New(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	return rec
}

func TestRefreshHandler_Success(t *testing.T) {
	svc := &stubRefresher{pair: auth.TokenPair{AccessToken: "new-at", RefreshToken: "new-rt"}}

	rec := doRequest(t, svc, `{"refresh_token":"old-rt"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body refresh.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "new-at", body.AccessToken)
	assert.Equal(t, "new-rt", body.RefreshToken)
}

func TestRefreshHandler_InvalidToken(t *testing.T) {
	rec := doRequest(t, &stubRefresher{err: auth.ErrInvalidToken}, `{"refresh_token":"bogus"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}

func TestRefreshHandler_ExpiredToken(t *testing.T) {
	rec := doRequest(t, &stubRefresher{err: auth.ErrTokenExpired}, `{"refresh_token":"stale"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh token expired")
}

func TestRefreshHandler_MissingToken(t *testing.T) {
	rec := doRequest(t, &stubRefresher{}, `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
