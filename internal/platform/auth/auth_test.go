package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestActor_HasRole(t *testing.T) {
	a := Actor{Roles: []string{RoleCarer}}
	if !a.HasRole(RoleCarer) {
		t.Error("expected carer role to match")
	}
	if a.HasRole(RoleQA) {
		t.Error("carer must not pass a qa check")
	}
}

func TestActor_AdminImpliesAll(t *testing.T) {
	a := Actor{Roles: []string{RoleAdmin}}
	if !a.HasRole(RoleQA) || !a.HasRole(RoleCoordinator) {
		t.Error("admin should pass every role check")
	}
}

func TestActorFromContext_Empty(t *testing.T) {
	a := ActorFromContext(context.Background())
	if a.ID != uuid.Nil || len(a.Roles) != 0 {
		t.Error("expected zero actor for empty context")
	}
}

func TestActorFromContext_RoundTrip(t *testing.T) {
	want := Actor{ID: uuid.New(), Roles: []string{RoleQA}, OrgID: uuid.New()}
	ctx := WithActor(context.Background(), want)
	got := ActorFromContext(ctx)
	if got.ID != want.ID || got.OrgID != want.OrgID {
		t.Errorf("actor did not round-trip: %+v", got)
	}
}

func signToken(t *testing.T, key []byte, claims *Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	key := []byte("test-signing-key")
	actorID := uuid.New()
	orgID := uuid.New()
	tokenStr := signToken(t, key, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		OrgID: orgID.String(),
		Roles: []string{RoleCarer},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Actor
	h := JWTMiddleware(JWTConfig{SigningKey: key})(func(c echo.Context) error {
		got = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != actorID || got.OrgID != orgID {
		t.Errorf("actor mismatch: %+v", got)
	}
	if !got.HasRole(RoleCarer) {
		t.Error("expected carer role on actor")
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(JWTConfig{SigningKey: []byte("k")})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	if err == nil {
		t.Fatal("expected error for missing header")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_BadSignature(t *testing.T) {
	tokenStr := signToken(t, []byte("wrong-key"), &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(JWTConfig{SigningKey: []byte("right-key")})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err == nil {
		t.Fatal("expected error for bad signature")
	}
}

func TestJWTMiddleware_NonUUIDSubject(t *testing.T) {
	key := []byte("test-signing-key")
	tokenStr := signToken(t, key, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "service-account",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(JWTConfig{SigningKey: key})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err == nil {
		t.Fatal("expected error for non-uuid subject")
	}
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), Actor{ID: uuid.New(), Roles: []string{RoleQA}}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(RoleQA)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), Actor{ID: uuid.New(), Roles: []string{RoleCarer}}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(RoleQA)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestDevAuthMiddleware_SetsAdminActor(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Actor
	h := DevAuthMiddleware()(func(c echo.Context) error {
		got = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.HasRole(RoleAdmin) {
		t.Error("expected dev actor to be admin")
	}
}
