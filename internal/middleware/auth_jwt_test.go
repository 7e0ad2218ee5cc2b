package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"goldwork/internal/domain"
)

func TestSignVerifyJWT(t *testing.T) {
	token, err := SignJWT("secret", TokenClaims{Sub: "u1", Role: "student", Exp: time.Now().Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "u1" || claims.Role != "student" {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := VerifyJWT("other", token); err == nil {
		t.Fatal("token verified with the wrong secret")
	}

	expired, _ := SignJWT("secret", TokenClaims{Sub: "u1", Role: "student", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifyJWT("secret", expired); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestAuthJWTStoresActor(t *testing.T) {
	var got domain.Actor
	h := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, _ := SignJWT("secret", TokenClaims{Sub: "employer-1", Role: "employer"})
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.ID != "employer-1" || got.Role != domain.RoleEmployer {
		t.Fatalf("actor = %+v", got)
	}
}

func TestAuthJWTRejects(t *testing.T) {
	h := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached")
	}))
	badRole, _ := SignJWT("secret", TokenClaims{Sub: "u1", Role: "wizard"})
	noSub, _ := SignJWT("secret", TokenClaims{Role: "admin"})

	for name, header := range map[string]string{
		"missing":  "",
		"scheme":   "Basic abc",
		"garbage":  "Bearer abc.def",
		"bad role": "Bearer " + badRole,
		"no sub":   "Bearer " + noSub,
	} {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rec.Code)
		}
	}
}
