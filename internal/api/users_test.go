package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// createTestUser registers a user through the API and fails the test on
// any status other than 201.
func createTestUser(t *testing.T, router http.Handler, login string) {
	t.Helper()

	body := `{"name": "Alice", "surname": "Smith", "login": "` + login + `", "password": "s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestCreateUser(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"name": "Alice", "surname": "Smith", "login": "asmith", "password": "s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	resp := decodeJSON(t, w)
	if resp["login"] != "asmith" {
		t.Errorf("login = %v, want asmith", resp["login"])
	}
	devices, ok := resp["devices"].([]any)
	if !ok {
		t.Fatalf("devices = %T, want list", resp["devices"])
	}
	if len(devices) != 0 {
		t.Errorf("new user holds %d devices, want 0", len(devices))
	}
}

func TestCreateUser_DuplicateLogin(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestUser(t, router, "asmith")

	body := `{"name": "Another", "surname": "Smith", "login": "asmith", "password": "pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestCreateUser_MissingLogin(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"name": "Alice", "surname": "Smith"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListUsers(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestUser(t, router, "asmith")
	createTestUser(t, router, "bjones")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeJSON(t, w)
	if int(resp["count"].(float64)) != 2 {
		t.Errorf("count = %v, want 2", resp["count"])
	}
}

func TestUserDevices_UnknownUser(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/ghost/devices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
