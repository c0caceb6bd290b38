package ingest

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"relayapi/src/model"
)

func TestNormalizeStrictJSON(t *testing.T) {
	obj, err := Normalize([]byte(`{"action":"BUY","symbol":"EURUSD"}`), "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["action"] != "BUY" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestNormalizeIgnoresContentType(t *testing.T) {
	// MT5 loves sending JSON labelled as form data
	obj, err := Normalize([]byte(`{"action":"BUY"}`), "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["action"] != "BUY" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestNormalizeDoubleEncoded(t *testing.T) {
	obj, err := Normalize([]byte(`"{\"action\":\"SELL\"}"`), "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["action"] != "SELL" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestNormalizeStripsBOMAndNUL(t *testing.T) {
	raw := []byte("\uFEFF{\"action\":\"BUY\"}\x00\x00")
	obj, err := Normalize(raw, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["action"] != "BUY" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestNormalizeBraceSlice(t *testing.T) {
	raw := []byte("garbage-prefix {\"action\":\"CLOSE\"} trailing junk")
	obj, err := Normalize(raw, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["action"] != "CLOSE" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestNormalizeFormFallback(t *testing.T) {
	t.Run("json field", func(t *testing.T) {
		form := url.Values{"json": {`{"action":"BUY"}`}}
		obj, err := Normalize([]byte("definitely&not=json"), "application/x-www-form-urlencoded", form)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if obj["action"] != "BUY" {
			t.Fatalf("unexpected object: %v", obj)
		}
	})

	t.Run("json wins over data", func(t *testing.T) {
		form := url.Values{
			"data": {`{"src":"data"}`},
			"json": {`{"src":"json"}`},
		}
		obj, err := Normalize(nil, "application/x-www-form-urlencoded", form)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if obj["src"] != "json" {
			t.Fatalf("expected json field to win, got %v", obj)
		}
	})

	t.Run("body field with BOM", func(t *testing.T) {
		form := url.Values{"body": {"\uFEFF{\"action\":\"SELL\"}"}}
		obj, err := Normalize(nil, "application/x-www-form-urlencoded", form)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if obj["action"] != "SELL" {
			t.Fatalf("unexpected object: %v", obj)
		}
	})
}

func TestNormalizeRejectsNonObjects(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `42`, `"just a string"`, `true`} {
		if _, err := Normalize([]byte(body), "application/json", nil); err == nil {
			t.Fatalf("expected failure for body %s", body)
		}
	}
}

func TestNormalizeFailureDiag(t *testing.T) {
	raw := []byte(strings.Repeat("x", 600))
	_, err := Normalize(raw, "text/weird", nil)
	if err == nil {
		t.Fatal("expected BadPayload error")
	}

	var bad *model.BadPayloadError
	if !errors.As(err, &bad) {
		t.Fatalf("expected *model.BadPayloadError, got %T", err)
	}
	if bad.Diag.ContentType != "text/weird" {
		t.Fatalf("diag content type: %q", bad.Diag.ContentType)
	}
	if bad.Diag.RawLen != 600 {
		t.Fatalf("diag raw length: %d", bad.Diag.RawLen)
	}
	if len(bad.Diag.RawPreview) != 400 {
		t.Fatalf("expected preview capped at 400 bytes, got %d", len(bad.Diag.RawPreview))
	}
}

func TestNormalizePreviewSurvivesBinaryBodies(t *testing.T) {
	raw := []byte{0xff, 0xfe, 0x00, 0x41}
	_, err := Normalize(raw, "application/octet-stream", nil)

	var bad *model.BadPayloadError
	if !errors.As(err, &bad) {
		t.Fatalf("expected *model.BadPayloadError, got %T", err)
	}
	if bad.Diag.RawPreview == "" {
		t.Fatal("expected best-effort preview of binary body")
	}
}
