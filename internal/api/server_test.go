package api

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/achomutovskij/deviceservice/internal/device"
	"github.com/achomutovskij/deviceservice/internal/gsm"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/config"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/database"
	"github.com/achomutovskij/deviceservice/internal/infrastructure/logging"
	_ "github.com/achomutovskij/deviceservice/migrations"
)

const sampleDataset = `name,technology,2g,x,3g,y,4g
Samsung Galaxy S9,GSM / CDMA / HSPA / EVDO / LTE,GSM 850 / 900 / 1800 / 1900,HSPA,HSDPA 850 / 900 / 2100,LTE-A,LTE band 1(2100)
`

// enrichedDevice mirrors the JSON of gsm.EnrichedDevice for decoding.
type enrichedDevice struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Available            bool    `json:"available"`
	LastBookedPersonName *string `json:"lastBookedPersonName"`
	LastBookedTime       *string `json:"lastBookedTime"`
	Technology           string  `json:"technology"`
	TwoGBands            string  `json:"twoGBands"`
	ThreeGBands          string  `json:"threeGBands"`
	FourGBands           string  `json:"fourGBands"`
}

type testEnv struct {
	srv     *Server
	db      *database.DB
	handler http.Handler
}

// newTestEnv builds a server over a migrated SQLite file and the sample dataset.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "devices.db"),
		WALMode:      true,
		BusyTimeout:  5,
		MaxOpenConns: 4,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	loc, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	registry := device.NewRegistry(device.NewSQLiteRepository(db.DB, loc), device.NewClock(loc))

	dataset, err := gsm.ParseDataset(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}

	cfg := &config.Config{
		Host:     "127.0.0.1",
		Port:     0,
		Timeouts: config.TimeoutConfig{Read: 5, Write: 5, Idle: 5},
	}

	srv, err := New(Deps{
		Config:   cfg,
		Logger:   logging.Discard(),
		Registry: registry,
		Resolver: gsm.NewResolver(dataset),
		DB:       db,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testEnv{srv: srv, db: db, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) create(t *testing.T, name string) int64 {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/management/devices", CreateDeviceRequest{Name: name})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q status = %d, body = %s", name, w.Code, w.Body.String())
	}
	var resp CreateDeviceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	return resp.ID
}

func (e *testEnv) list(t *testing.T, path string) []enrichedDevice {
	t.Helper()
	w := e.do(t, http.MethodGet, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, body = %s", path, w.Code, w.Body.String())
	}
	var out []enrichedDevice
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return out
}

func (e *testEnv) get(t *testing.T, id int64) enrichedDevice {
	t.Helper()
	path := fmt.Sprintf("/api/info/devices/%d", id)
	w := e.do(t, http.MethodGet, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, body = %s", path, w.Code, w.Body.String())
	}
	var out enrichedDevice
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// assertError checks status and error code of a failed response.
func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	var apiErr Error
	if err := json.NewDecoder(w.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if apiErr.Code != code {
		t.Errorf("code = %q, want %q", apiErr.Code, code)
	}
}

// ─── Health ────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if resp["status"] != "ok" || resp["database"] != "ok" || resp["version"] != "test" {
		t.Errorf("health = %v", resp)
	}
	if w.Header().Get(headerRequestID) == "" {
		t.Error("response has no X-Request-ID header")
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t)
	env.db.Close()

	w := env.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(headerRequestID, "trace-123")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if got := w.Header().Get(headerRequestID); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "trace-123")
	}
}

// ─── Scenarios ─────────────────────────────────────────────────────

func TestScenario_CreateListDelete(t *testing.T) {
	env := newTestEnv(t)

	id := env.create(t, "Nokia")

	got := env.list(t, "/api/info/devices/name/Nokia")
	if len(got) != 1 {
		t.Fatalf("by name = %d entries, want 1", len(got))
	}
	d := got[0]
	if d.ID != id || !d.Available {
		t.Errorf("device = %+v, want id %d available", d, id)
	}
	for _, v := range []string{d.Technology, d.TwoGBands, d.ThreeGBands, d.FourGBands} {
		if v != gsm.InfoUnavailable {
			t.Errorf("capability = %q, want %q", v, gsm.InfoUnavailable)
		}
	}

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/management/devices/%d", id), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/info/devices/name/Nokia", nil)
	assertError(t, w, http.StatusNotFound, ErrCodeDeviceNameNotFound)
}

func TestScenario_DatasetEnrichment(t *testing.T) {
	env := newTestEnv(t)

	id := env.create(t, "Samsung Galaxy S9")

	d := env.get(t, id)
	if !strings.Contains(d.Technology, "GSM / CDMA / HSPA / EVDO / LTE") {
		t.Errorf("technology = %q", d.Technology)
	}
	if d.FourGBands != "LTE band 1(2100)" {
		t.Errorf("fourGBands = %q", d.FourGBands)
	}
}

func TestScenario_DoubleBookingRefused(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "iPhone 14")

	w := env.do(t, http.MethodPost, "/api/booking/book",
		device.BookingRequest{Person: "Andrej", DeviceName: ptr("iPhone 14")})
	if w.Code != http.StatusNoContent {
		t.Fatalf("first book status = %d, body = %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/booking/book",
		device.BookingRequest{Person: "Peter", DeviceName: ptr("iPhone 14")})
	assertError(t, w, http.StatusConflict, ErrCodeDeviceNotAvailable)

	if avail := env.list(t, "/api/info/devices/available"); len(avail) != 0 {
		t.Errorf("available = %d, want 0", len(avail))
	}
	if all := env.list(t, "/api/info/devices"); len(all) != 1 {
		t.Errorf("all = %d, want 1", len(all))
	}
}

func TestScenario_SameNameBookedTwice(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "iPhone 14")
	env.create(t, "iPhone 14")

	for _, person := range []string{"Andrej", "Peter"} {
		w := env.do(t, http.MethodPost, "/api/booking/book",
			device.BookingRequest{Person: person, DeviceName: ptr("iPhone 14")})
		if w.Code != http.StatusNoContent {
			t.Fatalf("book for %s status = %d, body = %s", person, w.Code, w.Body.String())
		}
	}

	if avail := env.list(t, "/api/info/devices/available"); len(avail) != 0 {
		t.Errorf("available = %d, want 0", len(avail))
	}

	all := env.list(t, "/api/info/devices")
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}
	p0, p1 := all[0].LastBookedPersonName, all[1].LastBookedPersonName
	if p0 == nil || p1 == nil || *p0 == *p1 {
		t.Errorf("lastBookedPersonName = %v, %v, want two distinct names", p0, p1)
	}
	if *p0 != "Andrej" {
		t.Errorf("lowest id booked by %q, want Andrej", *p0)
	}
}

func TestScenario_RebookAdvancesTime(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps past a second")
	}
	env := newTestEnv(t)
	id := env.create(t, "Pixel 7")

	book := device.BookingRequest{Person: "Andrej", DeviceID: ptr(id)}

	if w := env.do(t, http.MethodPost, "/api/booking/book", book); w.Code != http.StatusNoContent {
		t.Fatalf("book status = %d", w.Code)
	}
	t1 := parseAPITime(t, env.get(t, id).LastBookedTime)

	if w := env.do(t, http.MethodPost, "/api/booking/return", book); w.Code != http.StatusNoContent {
		t.Fatalf("return status = %d", w.Code)
	}
	time.Sleep(1100 * time.Millisecond)

	if w := env.do(t, http.MethodPost, "/api/booking/book", book); w.Code != http.StatusNoContent {
		t.Fatalf("rebook status = %d", w.Code)
	}
	t2 := parseAPITime(t, env.get(t, id).LastBookedTime)

	if !t2.After(t1) {
		t.Errorf("t2 = %v, want after t1 = %v", t2, t1)
	}
}

func parseAPITime(t *testing.T, s *string) time.Time {
	t.Helper()
	if s == nil {
		t.Fatal("lastBookedTime is null")
	}
	ts, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		t.Fatalf("parsing lastBookedTime %q: %v", *s, err)
	}
	return ts
}

func TestScenario_RequestWithoutTarget(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/booking/book", "/api/booking/return"} {
		w := env.do(t, http.MethodPost, path, device.BookingRequest{Person: "Andrej"})
		assertError(t, w, http.StatusBadRequest, ErrCodeRequestMustHaveEitherDeviceIDOrName)
	}
}

// ─── Endpoint behaviour ────────────────────────────────────────────

func TestReturn_ByOtherPersonRejected(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Pixel 7")

	env.do(t, http.MethodPost, "/api/booking/book", device.BookingRequest{Person: "Andrej", DeviceID: ptr(id)})

	w := env.do(t, http.MethodPost, "/api/booking/return", device.BookingRequest{Person: "Peter", DeviceID: ptr(id)})
	assertError(t, w, http.StatusConflict, ErrCodeNoPersonWithGivenBookedDevice)

	w = env.do(t, http.MethodPost, "/api/booking/return", device.BookingRequest{Person: "Andrej", DeviceID: ptr(id)})
	if w.Code != http.StatusNoContent {
		t.Fatalf("return status = %d", w.Code)
	}

	d := env.get(t, id)
	if !d.Available || d.LastBookedPersonName == nil || *d.LastBookedPersonName != "Andrej" || d.LastBookedTime == nil {
		t.Errorf("after return = %+v, want available with Andrej's booking retained", d)
	}
}

func TestBook_ByNameAndID(t *testing.T) {
	env := newTestEnv(t)
	a := env.create(t, "Pixel 7")
	b := env.create(t, "Nokia")

	w := env.do(t, http.MethodPost, "/api/booking/book",
		device.BookingRequest{Person: "Andrej", DeviceName: ptr("Pixel 7"), DeviceID: ptr(b)})
	if w.Code != http.StatusNoContent {
		t.Fatalf("book status = %d, body = %s", w.Code, w.Body.String())
	}
	if env.get(t, a).Available || env.get(t, b).Available {
		t.Error("both targets should be booked")
	}
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown id", http.MethodGet, "/api/info/devices/999", nil, http.StatusNotFound, ErrCodeDeviceIDNotFound},
		{"non-numeric id", http.MethodGet, "/api/info/devices/abc", nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"book unknown id", http.MethodPost, "/api/booking/book",
			device.BookingRequest{Person: "Andrej", DeviceID: ptr(int64(999))}, http.StatusNotFound, ErrCodeDeviceIDNotFound},
		{"book unknown name", http.MethodPost, "/api/booking/book",
			device.BookingRequest{Person: "Andrej", DeviceName: ptr("Nothing")}, http.StatusConflict, ErrCodeDeviceNotAvailable},
		{"blank person", http.MethodPost, "/api/booking/book",
			device.BookingRequest{Person: " ", DeviceID: ptr(int64(1))}, http.StatusBadRequest, ErrCodeValidation},
		{"blank device name", http.MethodPost, "/api/management/devices",
			CreateDeviceRequest{Name: ""}, http.StatusBadRequest, ErrCodeValidation},
		{"malformed json", http.MethodPost, "/api/booking/book", "{not json", http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown route", http.MethodGet, "/api/nothing", nil, http.StatusNotFound, ErrCodeNotFound},
		{"wrong method", http.MethodPut, "/api/booking/book", nil, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)
			assertError(t, w, tt.status, tt.code)
		})
	}
}

func TestStorageFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.db.Close()

	w := env.do(t, http.MethodGet, "/api/info/devices", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var apiErr Error
	if err := json.NewDecoder(w.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding error: %v", err)
	}
	if apiErr.Code != ErrCodeInternal || apiErr.Message != "internal error" {
		t.Errorf("error = %+v, want generic internal error", apiErr)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Pixel 7")

	for i := range 2 {
		w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/management/devices/%d", id), nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("delete #%d status = %d", i+1, w.Code)
		}
	}
}

func TestDeleteAll(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "Pixel 7")
	env.create(t, "Nokia")

	if w := env.do(t, http.MethodDelete, "/api/management/devices", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete all status = %d", w.Code)
	}
	if all := env.list(t, "/api/info/devices"); len(all) != 0 {
		t.Errorf("all = %d after delete all, want 0", len(all))
	}
}

func TestListByName_SubstringAndEscapes(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "Samsung Galaxy S9")
	env.create(t, "Acme 5/5s")
	env.create(t, "iPhone 14")

	if got := env.list(t, "/api/info/devices/name/Galaxy%20S"); len(got) != 1 || got[0].Name != "Samsung Galaxy S9" {
		t.Errorf("by name Galaxy S = %+v", got)
	}
	if got := env.list(t, "/api/info/devices/name/5%2F5s"); len(got) != 1 || got[0].Name != "Acme 5/5s" {
		t.Errorf("by name 5/5s = %+v", got)
	}

	// Matching is case-sensitive.
	w := env.do(t, http.MethodGet, "/api/info/devices/name/iphone", nil)
	assertError(t, w, http.StatusNotFound, ErrCodeDeviceNameNotFound)
}

func TestEmptyListIsArray(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/info/devices", nil)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty list body = %q, want []", body)
	}
}

// ─── Lifecycle ─────────────────────────────────────────────────────

func TestServer_StartServesBothListeners(t *testing.T) {
	env := newTestEnv(t)

	if err := env.srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { env.srv.Close() })

	if err := env.srv.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	addrs := env.srv.Addrs()
	if len(addrs) != 2 {
		t.Fatalf("Addrs() = %v, want 2", addrs)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	for _, addr := range addrs {
		resp, err := client.Get("http://" + addr.String() + "/api/health")
		if err != nil {
			t.Fatalf("GET health on %s: %v", addr, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health on %s = %d", addr, resp.StatusCode)
		}
	}

	if err := env.srv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := client.Get("http://" + addrs[0].String() + "/api/health"); err == nil {
		t.Error("server still answering after Close()")
	}
	if err := env.srv.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

// writeSelfSignedCert writes a localhost certificate and key into dir.
func writeSelfSignedCert(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshalling key: %v", err)
	}

	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	if err := os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600); err != nil {
		t.Fatalf("writing certificate: %v", err)
	}
	if err := os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600); err != nil {
		t.Fatalf("writing key: %v", err)
	}
	return certFile, keyFile
}

func TestServer_StartFailsWithoutCertificate(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	env.srv.cfg.TLS = config.TLSConfig{
		Enabled:  true,
		CertFile: filepath.Join(dir, "missing.crt"),
		KeyFile:  filepath.Join(dir, "missing.key"),
	}

	if err := env.srv.Start(context.Background()); err == nil {
		env.srv.Close()
		t.Fatal("Start() with a missing certificate should fail")
	}
	if addrs := env.srv.Addrs(); len(addrs) != 0 {
		t.Errorf("Addrs() = %v after failed Start, want none bound", addrs)
	}
}

func TestServer_StartServesTLS(t *testing.T) {
	env := newTestEnv(t)
	certFile, keyFile := writeSelfSignedCert(t, t.TempDir())
	env.srv.cfg.TLS = config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}

	if err := env.srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { env.srv.Close() })
	addrs := env.srv.Addrs()

	pemCert, err := os.ReadFile(certFile)
	if err != nil {
		t.Fatalf("reading certificate: %v", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(pemCert)
	httpsClient := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}},
	}

	resp, err := httpsClient.Get("https://" + addrs[0].String() + "/api/health")
	if err != nil {
		t.Fatalf("HTTPS GET on primary: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("HTTPS health = %d, want 200", resp.StatusCode)
	}

	plain := &http.Client{Timeout: 5 * time.Second}
	resp, err = plain.Get("http://" + addrs[1].String() + "/api/health")
	if err != nil {
		t.Fatalf("HTTP GET on auxiliary: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("auxiliary health = %d, want 200", resp.StatusCode)
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	env := newTestEnv(t)
	full := Deps{
		Config:   env.srv.cfg,
		Logger:   env.srv.logger,
		Registry: env.srv.registry,
		Resolver: env.srv.resolver,
	}

	tests := []struct {
		name   string
		mutate func(d *Deps)
	}{
		{"config", func(d *Deps) { d.Config = nil }},
		{"logger", func(d *Deps) { d.Logger = nil }},
		{"registry", func(d *Deps) { d.Registry = nil }},
		{"resolver", func(d *Deps) { d.Resolver = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full
			tt.mutate(&deps)
			if _, err := New(deps); err == nil {
				t.Errorf("New() without %s should fail", tt.name)
			}
		})
	}

	if _, err := New(full); err != nil {
		t.Errorf("New() without DB error = %v, want nil", err)
	}
}
