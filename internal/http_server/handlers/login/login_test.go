package login_test

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
	"quizserver/internal/http_server/handlers/login"
	"quizserver/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	session auth.Session
	err     error
}

func (s *stubAuth) Login(_ context.Context, _, _ string) (auth.Session, error) {
	return s.session, s.err
}

func doRequest(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	return rec
}

func newHandler(svc *stubAuth) http.HandlerFunc {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return login.New(log, validator.New(), svc)
}

func TestLoginHandler_Success(t *testing.T) {
	svc := &stubAuth{session: auth.Session{
		TokenPair: auth.TokenPair{AccessToken: "at", RefreshToken: "rt"},
		User:      models.User{ID: 1, Email: "a@x.com", Name: "A", Role: models.RoleUser},
	}}

	rec := doRequest(t, newHandler(svc), `{"email":"a@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body login.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "at", body.AccessToken)
	assert.Equal(t, "rt", body.RefreshToken)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	// Wrong password and unknown email surface as the same response.
	svc := &stubAuth{err: auth.ErrInvalidCredentials}
	h := newHandler(svc)

	wrongPass := doRequest(t, h, `{"email":"a@x.com","password":"wrong"}`)
	unknownEmail := doRequest(t, h, `{"email":"nobody@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
	assert.Contains(t, wrongPass.Body.String(), "invalid email or password")
}

func TestLoginHandler_Validation(t *testing.T) {
	h := newHandler(&stubAuth{})

	rec := doRequest(t, h, `{"email":"not-an-email","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
