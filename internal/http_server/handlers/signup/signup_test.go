package signup_test

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
	"quizserver/internal/http_server/handlers/signup"
	"quizserver/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	session auth.Session
	err     error
}

func (s *stubAuth) SignUp(_ context.Context, _, _, _ string) (auth.Session, error) {
	return s.session, s.err
}

type stubPublisher struct {
	published []models.Message
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, msg models.Message) error {
	p.published = append(p.published, msg)
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	return rec
}

func TestSignupHandler_Success(t *testing.T) {
	svc := &stubAuth{session: auth.Session{
		TokenPair: auth.TokenPair{AccessToken: "at", RefreshToken: "rt"},
		User:      models.User{ID: 1, Email: "a@x.com", Name: "A", Role: models.RoleUser},
	}}
	pub := &stubPublisher{}

	h := signup.New(discardLogger(), validator.New(), svc, pub)
	rec := doRequest(t, h, `{"email":"a@x.com","password":"secret1","name":"A"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body signup.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "at", body.AccessToken)
	assert.Equal(t, "rt", body.RefreshToken)
	assert.Equal(t, "a@x.com", body.User.Email)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "welcome", pub.published[0].Purpose)
}

func TestSignupHandler_Conflict(t *testing.T) {
	svc := &stubAuth{err: auth.ErrUserExists}

	h := signup.New(discardLogger(), validator.New(), svc, &stubPublisher{})
	rec := doRequest(t, h, `{"email":"a@x.com","password":"secret1","name":"A"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestSignupHandler_Validation(t *testing.T) {
	h := signup.New(discardLogger(), validator.New(), &stubAuth{}, &stubPublisher{})

	cases := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","password":"secret1","name":"A"}`},
		{"short password", `{"email":"a@x.com","password":"123","name":"A"}`},
		{"missing name", `{"email":"a@x.com","password":"secret1"}`},
		{"garbage body", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSignupHandler_PublishFailureDoesNotFailSignup(t *testing.T) {
	svc := &stubAuth{session: auth.Session{
		TokenPair: auth.TokenPair{AccessToken: "at", RefreshToken: "rt"},
		User:      models.User{ID: 1, Email: "a@x.com", Name: "A"},
	}}
	pub := &stubPublisher{err: context.DeadlineExceeded}

	h := signup.New(discardLogger(), validator.New(), svc, pub)
	rec := doRequest(t, h, `{"email":"a@x.com","password":"secret1","name":"A"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}
