package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestJSONWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	JSON(rec, req, 201, map[string]string{"message": "created"})
	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "created" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	Error(rec, req, 404, "NOT_FOUND", "product not found", map[string]any{"tokenId": "42"})
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" || body.Error.Message != "product not found" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
	if body.Error.Details["tokenId"] != "42" {
		t.Fatalf("details missing: %+v", body.Error.Details)
	}
}
