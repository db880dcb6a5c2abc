package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"gearbook/internal/blob"
	"gearbook/internal/docstore"
	"gearbook/internal/infrastructure/config"
	"gearbook/internal/infrastructure/logging"
	"gearbook/internal/registry"
)

// decodeJSON parses a recorded JSON response body into a generic map.
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v; body: %s", err, w.Body.String())
	}
	return resp
}

// deviceForm builds a multipart device registration request.
func deviceForm(t *testing.T, fields map[string]string, photoName string, photo []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("WriteField(%s): %v", name, err)
		}
	}
	if photoName != "" {
		part, err := mw.CreateFormFile("photo", photoName)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("writing photo part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/devices", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// createTestDevice registers a device through the API and fails the test
// on any status other than 201.
func createTestDevice(t *testing.T, router http.Handler, identifier string) map[string]any {
	t.Helper()

	req := deviceForm(t, map[string]string{
		"identifier":    identifier,
		"name":          "Cordless Drill",
		"description":   "18V brushless",
		"serial_number": "SN-1001",
		"manufacturer":  "Makita",
	}, "drill.jpg", []byte("jpeg-bytes"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create device status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	return decodeJSON(t, w)
}

func TestCreateDevice(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	resp := createTestDevice(t, router, "drill-01")

	if resp["identifier"] != "drill-01" {
		t.Errorf("identifier = %v, want drill-01", resp["identifier"])
	}
	if resp["usage"] != "free" {
		t.Errorf("usage = %v, want free", resp["usage"])
	}
	filename, _ := resp["filename"].(string)
	if !strings.HasPrefix(filename, "drill-01-") || !strings.HasSuffix(filename, ".jpg") {
		t.Errorf("filename = %q, want drill-01-<uuid>.jpg", filename)
	}
}

func TestCreateDevice_MissingPhoto(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := deviceForm(t, map[string]string{"identifier": "drill-01"}, "", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateDevice_InvalidIdentifier(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	for _, identifier := range []string{"", "   ", "a/b", `a\b`} {
		req := deviceForm(t, map[string]string{"identifier": identifier}, "drill.jpg", []byte("x"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("identifier %q: status = %d, want %d", identifier, w.Code, http.StatusBadRequest)
		}
	}
}

func TestCreateDevice_Duplicate(t *testing.T) {
	srv, reg := testServer(t)
	router := srv.buildRouter()

	createTestDevice(t, router, "drill-01")

	req := deviceForm(t, map[string]string{"identifier": "drill-01"}, "again.jpg", []byte("x"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want %d", w.Code, http.StatusConflict)
	}
	if got := reg.DeviceCount(); got != 1 {
		t.Errorf("device count = %d, want 1", got)
	}
}

func TestListDevices(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestDevice(t, router, "drill-01")
	createTestDevice(t, router, "saw-02")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeJSON(t, w)
	if int(resp["count"].(float64)) != 2 {
		t.Fatalf("count = %v, want 2", resp["count"])
	}

	devices := resp["devices"].([]any)
	first := devices[0].(map[string]any)
	if first["identifier"] != "drill-01" {
		t.Errorf("first device = %v, want drill-01", first["identifier"])
	}
	if _, ok := first["filename"]; ok {
		t.Error("summary listing must not expose the photo filename")
	}
}

func TestListDevices_FullView(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestDevice(t, router, "drill-01")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices?view=full", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeJSON(t, w)
	devices := resp["devices"].([]any)
	first := devices[0].(map[string]any)
	if _, ok := first["filename"]; !ok {
		t.Error("full listing must include the photo filename")
	}
	if first["usage"] != "free" {
		t.Errorf("usage = %v, want free", first["usage"])
	}
}

func TestGetDevice(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestDevice(t, router, "drill-01")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/drill-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeJSON(t, w)
	if resp["serial_number"] != "SN-1001" {
		t.Errorf("serial_number = %v, want SN-1001", resp["serial_number"])
	}
	if _, ok := resp["filename"]; ok {
		t.Error("device detail must not expose the photo filename")
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpdateDevice(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestDevice(t, router, "drill-01")

	body := strings.NewReader(`{"name": "Impact Driver"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/devices/drill-01", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	resp := decodeJSON(t, w)
	if resp["name"] != "Impact Driver" {
		t.Errorf("name = %v, want Impact Driver", resp["name"])
	}
	if resp["manufacturer"] != "Makita" {
		t.Errorf("manufacturer = %v, want Makita (untouched)", resp["manufacturer"])
	}
}

func TestDeleteDevice(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	resp := createTestDevice(t, router, "drill-01")
	filename := resp["filename"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/devices/drill-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", w.Code, http.StatusNoContent)
	}

	// Catalogue entry gone
	req = httptest.NewRequest(http.MethodGet, "/api/v1/devices/drill-01", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// Photo gone too
	if _, _, err := srv.photos.Open(context.Background(), filename); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("photo open after delete = %v, want ErrNotFound", err)
	}
}

func TestGetPhoto(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestDevice(t, router, "drill-01")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/drill-01/photo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if got := w.Body.String(); got != "jpeg-bytes" {
		t.Errorf("photo body = %q, want %q", got, "jpeg-bytes")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		t.Errorf("Content-Type = %q, want image/*", ct)
	}
}

func TestGetPhoto_UnknownDevice(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/ghost/photo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// unavailableStore simulates a storage outage on every save.
type unavailableStore struct{}

func (unavailableStore) Load(context.Context) (*registry.Document, error) {
	return &registry.Document{Devices: []registry.Device{}, Users: []registry.User{}}, nil
}

func (unavailableStore) Save(context.Context, *registry.Document) error {
	return fmt.Errorf("%w: disk full", docstore.ErrUnavailable)
}

func TestStorageUnavailable(t *testing.T) {
	reg := registry.New(unavailableStore{})
	if err := reg.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	photos, err := blob.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	srv, err := New(Deps{
		Config:   config.APIConfig{MaxUploadSize: 1 << 20},
		Logger:   logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test"),
		Registry: reg,
		Photos:   photos,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	router := srv.buildRouter()

	req := deviceForm(t, map[string]string{"identifier": "drill-01"}, "drill.jpg", []byte("x"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusServiceUnavailable, w.Body.String())
	}

	// The uploaded photo is rolled back when registration fails.
	files, globErr := listLocalPhotos(photos)
	if globErr != nil {
		t.Fatalf("listing photos: %v", globErr)
	}
	if len(files) != 0 {
		t.Errorf("photo store has %d files after failed create, want 0", len(files))
	}
}

// listLocalPhotos returns the keys present in a local photo store.
func listLocalPhotos(s *blob.LocalStore) ([]string, error) {
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		if !entry.IsDir() {
			keys = append(keys, entry.Name())
		}
	}
	return keys, nil
}
