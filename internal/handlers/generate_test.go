package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fa-metadata/fa40/internal/extract"
)

const testConnector = `{
  "metadata": {"name": "test", "version": "1.0.0"},
  "identification": {"rules": []},
  "mappings": {
    "General Section": {
      "File Name": {"source": [{"source": "file", "tag": "Name"}], "required": true}
    }
  },
  "validation": {
    "required_fields": ["General Section.File Name"],
    "optional_fields": []
  }
}`

func multipartRequest(t *testing.T, parts map[string][2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for part, file := range parts {
		fw, err := w.CreateFormFile(part, file[0])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(file[1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/header", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleGenerate(t *testing.T) {
	h := New(extract.Default(), nil)
	// The payload is not a decodable image; the backends record failures and
	// the file pseudo-tags still resolve the mapped field.
	req := multipartRequest(t, map[string][2]string{
		"file":      {"scan.tif", "not a real image"},
		"connector": {"test.json", testConnector},
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Header map[string]map[string]any `json:"header"`
		Validation struct {
			MissingRequired []string `json:"missing_required"`
		} `json:"validation"`
		ConnectorMatched bool `json:"connector_matched"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Header["General Section"]["File Name"] != "scan.tif" {
		t.Errorf("Expected File Name scan.tif, got %v", resp.Header["General Section"]["File Name"])
	}
	if len(resp.Validation.MissingRequired) != 0 {
		t.Errorf("Expected no missing required fields, got %v", resp.Validation.MissingRequired)
	}
	if !resp.ConnectorMatched {
		t.Error("Expected rule-less connector to match")
	}
}

func TestHandleGenerateRejectsNonTIFF(t *testing.T) {
	h := New(extract.Default(), nil)
	req := multipartRequest(t, map[string][2]string{
		"file":      {"scan.png", "png bytes"},
		"connector": {"test.json", testConnector},
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleGenerateMissingPart(t *testing.T) {
	h := New(extract.Default(), nil)
	req := multipartRequest(t, map[string][2]string{
		"file": {"scan.tif", "not a real image"},
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleGenerateBadConnector(t *testing.T) {
	h := New(extract.Default(), nil)
	req := multipartRequest(t, map[string][2]string{
		"file":      {"scan.tif", "not a real image"},
		"connector": {"test.json", `{"mappings": {}}`},
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleGenerateMethodNotAllowed(t *testing.T) {
	h := New(extract.Default(), nil)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, httptest.NewRequest(http.MethodGet, "/api/header", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandleTransforms(t *testing.T) {
	h := New(extract.Default(), nil)
	rec := httptest.NewRecorder()
	h.HandleTransforms(rec, httptest.NewRequest(http.MethodGet, "/api/transforms", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp struct {
		Transforms []string `json:"transforms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Transforms) != 5 {
		t.Errorf("Expected 5 transforms, got %v", resp.Transforms)
	}
}
