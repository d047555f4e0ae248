package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Prosparity-git/collection/internal/security"
)

type stubVerifier struct {
	claims *security.ActorClaims
	err    error
}

func (s *stubVerifier) VerifyToken(tokenString string) (*security.ActorClaims, error) {
	return s.claims, s.err
}

func actorEcho() (http.Handler, *string) {
	var actor string
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), &actor
}

func TestActorMiddleware_GETPassesWithoutToken(t *testing.T) {
	handler, actor := actorEcho()
	mw := ActorMiddleware(&stubVerifier{err: errors.New("should not be called")})(handler)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, *actor)
}

func TestActorMiddleware_MutationRequiresToken(t *testing.T) {
	handler, _ := actorEcho()
	mw := ActorMiddleware(&stubVerifier{})(handler)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/payments/10", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActorMiddleware_InvalidTokenRejected(t *testing.T) {
	handler, _ := actorEcho()
	mw := ActorMiddleware(&stubVerifier{err: security.ErrInvalidToken})(handler)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/payments/10", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActorMiddleware_ThreadsActorThroughContext(t *testing.T) {
	handler, actor := actorEcho()
	mw := ActorMiddleware(&stubVerifier{claims: &security.ActorClaims{UserID: 7, Name: "Asha"}})(handler)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/payments/10", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha", *actor)
}
