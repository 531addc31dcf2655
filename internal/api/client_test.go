package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/usstm/unionclient/internal/platform/errors"
	"github.com/usstm/unionclient/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestCSRFToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/csrf-token" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"csrf_token": "tok-123"})
	}))

	token, err := client.CSRFToken(context.Background())
	if err != nil {
		t.Fatalf("CSRFToken: %v", err)
	}
	if token != "tok-123" {
		t.Fatalf("token = %q, want tok-123", token)
	}
}

func TestCSRFTokenEmptyPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))

	_, err := client.CSRFToken(context.Background())
	if !errors.Is(err, apperrors.New(apperrors.CodeAuthCSRFTokenMissing, "")) {
		t.Fatalf("expected csrf missing code, got %v", err)
	}
}

func TestLoginForwardsCredentialsAndCSRF(t *testing.T) {
	var got loginRequest
	var csrfHeader string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		csrfHeader = r.Header.Get("X-CSRF-Token")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.Login(context.Background(), session.LoginInput{
		Email:     "student@usstm.ca",
		Password:  "hunter2",
		CSRFToken: "tok-123",
		Remember:  true,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if csrfHeader != "tok-123" {
		t.Fatalf("csrf header = %q, want tok-123", csrfHeader)
	}
	if got.Email != "student@usstm.ca" || got.Password != "hunter2" || !got.Remember {
		t.Fatalf("unexpected login payload %+v", got)
	}
}

func TestLoginRejectedMapsToCredentialError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.Login(context.Background(), session.LoginInput{Email: "a", Password: "b"})
	if apperrors.CodeOf(err) != apperrors.CodeAuthInvalidCredentials {
		t.Fatalf("expected invalid credentials code, got %v", err)
	}
}

func TestLogoutFailureMapsToLogoutError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.Logout(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeAuthLogoutFailed {
		t.Fatalf("expected logout failed code, got %v", err)
	}
}

func TestCurrentUserDecodesProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/students/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"student": map[string]string{
				"student_id": "s-1",
				"email":      "student@usstm.ca",
				"first_name": "Danielle",
			},
			"role": "committee_member",
			"committees": []map[string]string{
				{"committee_id": "c-1", "name": "Events"},
			},
			"rgbank_permissions": map[string]int{
				"access_level":          1,
				"view_permission_level": 1,
			},
			"token_expiration": 1900000000,
		})
	}))

	data, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if data.Student == nil || data.Student.StudentID != "s-1" {
		t.Fatalf("student not decoded: %+v", data.Student)
	}
	if data.Role != session.RoleCommitteeMember {
		t.Fatalf("role = %v, want committee member", data.Role)
	}
	if len(data.Committees) != 1 || data.Committees[0].CommitteeID != "c-1" {
		t.Fatalf("committees not decoded: %+v", data.Committees)
	}
	if data.RGBank == nil || data.RGBank.ViewPermissionLevel != 1 {
		t.Fatalf("rgbank permissions not decoded: %+v", data.RGBank)
	}
	if data.Expiry != time.Unix(1900000000, 0) {
		t.Fatalf("expiry = %v, want unix 1900000000", data.Expiry)
	}
}

func TestCurrentUserUnauthorizedMapsToSessionExpired(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.CurrentUser(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeAuthSessionExpired {
		t.Fatalf("expected session expired code, got %v", err)
	}
}

func TestCurrentUserBadJSONMapsToBadResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	_, err := client.CurrentUser(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeBackendBadResponse {
		t.Fatalf("expected bad response code, got %v", err)
	}
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.Close()

	_, err = client.CurrentUser(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeAuthNetworkFailure {
		t.Fatalf("expected network failure code, got %v", err)
	}
}

func TestCookieJarCarriesSessionAcrossCalls(t *testing.T) {
	var sawCookie bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "union_session", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case "/students/me":
			if cookie, err := r.Cookie("union_session"); err == nil && cookie.Value == "abc" {
				sawCookie = true
			}
			json.NewEncoder(w).Encode(map[string]any{})
		}
	}))

	if err := client.Login(context.Background(), session.LoginInput{Email: "a", Password: "b"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := client.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if !sawCookie {
		t.Fatal("session cookie from login was not sent on the next request")
	}
}

func TestExpenses(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rgbank/expenses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"item_id": "e-1", "title": "Pizza", "status": "PAID", "amount": 4250},
		})
	}))

	items, err := client.Expenses(context.Background())
	if err != nil {
		t.Fatalf("Expenses: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "e-1" || items[0].Amount != 4250 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestTokenExpiryPrefersExplicitTimestamp(t *testing.T) {
	got := tokenExpiry(1900000000, "ignored")
	if got != time.Unix(1900000000, 0) {
		t.Fatalf("expiry = %v, want unix 1900000000", got)
	}
}

func TestTokenExpiryFallsBackToJWTClaim(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "s-1",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	got := tokenExpiry(0, signed)
	if !got.Equal(expiry) {
		t.Fatalf("expiry = %v, want %v", got, expiry)
	}
}

func TestTokenExpiryZeroWhenUnavailable(t *testing.T) {
	if got := tokenExpiry(0, ""); !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got)
	}
	if got := tokenExpiry(0, "garbage"); !got.IsZero() {
		t.Fatalf("expected zero time for garbage token, got %v", got)
	}
}
