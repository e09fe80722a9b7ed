package bulkimport

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newUploadRequest(t *testing.T, field, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "batch.csv")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	} else if err := mw.WriteField("note", "no file"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload-csv", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func newTestUploadHandler(t *testing.T, maxBytes int64) (*Handler, *memStore, string) {
	t.Helper()
	im, store, _ := newTestImporter()
	dir := t.TempDir()
	return NewHandler(im, dir, maxBytes, zerolog.Nop()), store, dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected the temporary upload to be removed, found %d entries", len(entries))
	}
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func TestUpload_Success(t *testing.T) {
	h, store, dir := newTestUploadHandler(t, 1<<20)
	body := header +
		"Ana,ana@example.com,1,Dr A,Cardiology,2026-03-01,09:00,scheduled,cash,10\n" +
		"Ben,,2,Dr B,Neurology,2026-03-01,10:00,scheduled,cash,20\n"

	for _, field := range []string{"csvFile", "file"} {
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(newUploadRequest(t, field, body), rec)

		if err := h.Upload(c); err != nil {
			t.Fatalf("%s: unexpected error: %v", field, err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", field, rec.Code)
		}

		var res Result
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("%s: decode: %v", field, err)
		}
		if want := (Result{Success: true, Inserted: 2, Skipped: 1}); res != want {
			t.Errorf("%s: expected %+v, got %+v", field, want, res)
		}
		assertDirEmpty(t, dir)
	}
	if len(store.appts) != 2 {
		t.Errorf("expected 2 appointments, got %d", len(store.appts))
	}
}

func TestUpload_MissingFile(t *testing.T) {
	h, _, dir := newTestUploadHandler(t, 1<<20)
	c := echo.New().NewContext(newUploadRequest(t, "", ""), httptest.NewRecorder())

	if code := statusOf(h.Upload(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
	assertDirEmpty(t, dir)
}

func TestUpload_TransactionFailure(t *testing.T) {
	h, store, dir := newTestUploadHandler(t, 1<<20)
	store.failAt = 1
	c := echo.New().NewContext(newUploadRequest(t, "csvFile", header+
		"Ana,ana@example.com,1,Dr A,Cardiology,2026-03-01,09:00,scheduled,cash,10\n"), httptest.NewRecorder())

	if code := statusOf(h.Upload(c)); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if len(store.appts) != 0 {
		t.Errorf("expected no appointments after rollback, got %d", len(store.appts))
	}
	assertDirEmpty(t, dir)
}

func TestUpload_MalformedFile(t *testing.T) {
	h, _, dir := newTestUploadHandler(t, 1<<20)
	c := echo.New().NewContext(newUploadRequest(t, "csvFile", ""), httptest.NewRecorder())

	if code := statusOf(h.Upload(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
	assertDirEmpty(t, dir)
}

func TestUpload_TooLarge(t *testing.T) {
	h, _, dir := newTestUploadHandler(t, 64)
	c := echo.New().NewContext(newUploadRequest(t, "csvFile", header), httptest.NewRecorder())

	if code := statusOf(h.Upload(c)); code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", code)
	}
	assertDirEmpty(t, dir)
}
