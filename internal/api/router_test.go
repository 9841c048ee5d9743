package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardigital/user-service/internal/api/middleware"
	"github.com/cardigital/user-service/internal/core/ports"
	"github.com/cardigital/user-service/internal/core/service"
	"github.com/cardigital/user-service/internal/infrastructure/crypto"
	"github.com/cardigital/user-service/internal/infrastructure/http/handlers"
	"github.com/cardigital/user-service/internal/testutil"
)

type testServer struct {
	e     *echo.Echo
	store *testutil.UserStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	store := testutil.NewUserStore()
	cache := testutil.NewPrincipalCache()
	hasher := crypto.NewBcryptHasher(bcrypt.MinCost)
	tokens := service.NewTokenService("test-secret", time.Hour)

	users := service.NewUserService(store, store, hasher, cache, log)
	err := users.EnsureAdmin(context.Background(), ports.CreateUserInput{
		Username:    "root",
		Password:    "rootpw",
		FirstName:   "Administrator",
		LastName:    "Account",
		Email:       "root@example.com",
		PhoneNumber: "+000",
	})
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	e := NewRouter(Dependencies{
		Logger:        log,
		AuthService:   service.NewAuthService(store, hasher, tokens, cache, log),
		Authenticator: service.NewAuthenticator(store, tokens, cache, log),
		UserService:   users,
		HealthChecks: []handlers.Check{{
			Name: "memory",
			Ping: func(context.Context) error { return nil },
		}},
		Registry: prometheus.NewRegistry(),
	})
	return &testServer{e: e, store: store}
}

func (s *testServer) do(method, target, body string, session *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := s.do(http.MethodPost, "/auth/login", `{"username":"`+username+`","password":"`+password+`"}`, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("login %s: expected 204, got %d: %s", username, rec.Code, rec.Body.String())
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie && ck.Value != "" {
			return &http.Cookie{Name: ck.Name, Value: ck.Value}
		}
	}
	t.Fatalf("login %s: no session cookie", username)
	return nil
}

func userID(t *testing.T, rec *httptest.ResponseRecorder) int64 {
	t.Helper()
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp.ID
}

const aliceBody = `{"username":"Alice","password":"pw1","firstName":"Alice","lastName":"Smith","email":"alice@example.com","phoneNumber":"+100","birthDate":"1990-01-02"}`

func TestRouter_UserLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/users", aliceBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	aliceID := userID(t, rec)
	if got := s.store.Get(aliceID); got == nil || got.Username != "alice" {
		t.Fatalf("expected stored lower-case username, got %+v", got)
	}

	if rec := s.do(http.MethodPost, "/users", aliceBody, nil); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}

	if rec := s.do(http.MethodPost, "/auth/login", `{"username":"alice","password":"nope"}`, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	alice := s.login(t, "alice", "pw1")
	root := s.login(t, "root", "rootpw")
	rootID := s.store.Get(1).ID

	if rec := s.do(http.MethodGet, "/users/"+strconv.FormatInt(aliceID, 10), "", alice); rec.Code != http.StatusOK {
		t.Fatalf("self get: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/users/"+strconv.FormatInt(rootID, 10), "", alice); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign get: expected 403, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/users/"+strconv.FormatInt(aliceID, 10), "", root); rec.Code != http.StatusOK {
		t.Fatalf("admin get: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/users/"+strconv.FormatInt(rootID, 10), "", alice); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin delete: expected 403, got %d", rec.Code)
	}

	rec = s.do(http.MethodPatch, "/users", `{"firstName":"Alicia"}`, alice)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"firstName":"Alicia"`) {
		t.Fatalf("patch self: expected 200 with new name, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := s.do(http.MethodPatch, "/users", `{"lastName":""}`, alice); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty last name: expected 400, got %d", rec.Code)
	}

	rec = s.do(http.MethodPut, "/users/change-password", `{"password":"pw2","repeatPassword":"pw3"}`, alice)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("password mismatch: expected 400, got %d", rec.Code)
	}

	if rec := s.do(http.MethodDelete, "/users/"+strconv.FormatInt(aliceID, 10), "", root); rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/users", "", alice); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: expected 401, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/auth/logout", "", alice)
	if rec.Code != http.StatusNoContent || !strings.Contains(rec.Header().Get(echo.HeaderSetCookie), "Max-Age=0") {
		t.Fatalf("logout: expected 204 with clearing cookie, got %d %q", rec.Code, rec.Header().Get(echo.HeaderSetCookie))
	}
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/users", ""},
		{http.MethodPatch, "/users", `{"firstName":"Nobody"}`},
		{http.MethodPut, "/users/change-password", `{"password":"a12","repeatPassword":"a12"}`},
		{http.MethodGet, "/users/1", ""},
		{http.MethodPatch, "/users/1", `{"firstName":"Nobody"}`},
		{http.MethodDelete, "/users/1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			if rec := s.do(tc.method, tc.target, tc.body, nil); rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRouter_ListUsers(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(http.MethodPost, "/users", aliceBody, nil); rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	root := s.login(t, "root", "rootpw")

	rec := s.do(http.MethodGet, "/users?search=smi&page=0&size=5", "", root)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Items      []map[string]any `json:"items"`
		Total      int64            `json:"total"`
		Size       int              `json:"size"`
		TotalPages int              `json:"totalPages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Items[0]["lastName"] != "Smith" || resp.Size != 5 || resp.TotalPages != 1 {
		t.Fatalf("unexpected list: %+v", resp)
	}
}

func TestRouter_PublicProbes(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := s.do(http.MethodGet, target, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}

func TestRouter_OverlongPasswordIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	body := strings.Replace(aliceBody, `"password":"pw1"`, `"password":"`+strings.Repeat("x", 73)+`"`, 1)

	rec := s.do(http.MethodPost, "/users", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ListUsersHugePage(t *testing.T) {
	s := newTestServer(t)
	root := s.login(t, "root", "rootpw")

	for _, page := range []string{"9223372036854775807", "99999999999999999999"} {
		rec := s.do(http.MethodGet, "/users?page="+page+"&size=10", "", root)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("page=%s: expected 400, got %d: %s", page, rec.Code, rec.Body.String())
		}
	}

	rec := s.do(http.MethodGet, "/users?search=%20%20&size=10", "", root)
	if rec.Code != http.StatusOK {
		t.Fatalf("blank search: expected 200, got %d", rec.Code)
	}
}
