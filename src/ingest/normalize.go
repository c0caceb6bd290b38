// Package ingest turns untrusted TREA payloads into validated event records.
//
// The MT5 terminal side of TREA is a hostile sender: wrong Content-Type,
// UTF-8 BOMs, trailing NUL bytes, double-encoded JSON and occasional
// form-urlencoded wrapping all occur in the field. The normalizer runs an
// ordered list of parse strategies and accepts the first one that yields a
// JSON object.
package ingest

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"

	"relayapi/src/model"
)

// formKeys are the form-urlencoded fields some senders wrap the payload in,
// tried in this order.
var formKeys = []string{"json", "data", "body"}

const previewLimit = 400

// Normalize parses an arbitrary request body into a JSON object.
//
// Strategies, first success wins:
//  1. strict object parse of the raw body (Content-Type ignored)
//  2. double-encoded body: a JSON string whose content parses to an object
//  3. strip BOM/NUL, trim whitespace, retry (1)-(2)
//  4. slice between the first '{' and the last '}' of the cleaned text
//  5. form fields "json", "data", "body", cleaned, in that order
//
// On failure it returns a *model.BadPayloadError carrying the original
// content type, raw length and a bounded preview of the body.
func Normalize(raw []byte, contentType string, form url.Values) (map[string]interface{}, error) {
	if obj, ok := parseObject(string(raw)); ok {
		return obj, nil
	}

	cleaned := cleanText(raw)
	if cleaned != "" {
		if obj, ok := parseObject(cleaned); ok {
			return obj, nil
		}
		if obj, ok := parseBraceSlice(cleaned); ok {
			return obj, nil
		}
	}

	for _, key := range formKeys {
		v := cleanText([]byte(form.Get(key)))
		if v == "" {
			continue
		}
		if obj, ok := parseObject(v); ok {
			return obj, nil
		}
	}

	return nil, &model.BadPayloadError{Diag: model.BadPayloadDiag{
		ContentType: contentType,
		RawLen:      len(raw),
		RawPreview:  preview(raw),
	}}
}

// parseObject accepts either a JSON object or a JSON string that itself
// contains a JSON object (double-encoded bodies).
func parseObject(text string) (map[string]interface{}, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}

	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case string:
		var inner interface{}
		if err := json.Unmarshal([]byte(t), &inner); err != nil {
			return nil, false
		}
		if obj, ok := inner.(map[string]interface{}); ok {
			return obj, true
		}
	}

	return nil, false
}

// parseBraceSlice recovers payloads with stray prefixes/suffixes by parsing
// only the text between the first '{' and the last '}'.
func parseBraceSlice(text string) (map[string]interface{}, bool) {
	i := strings.Index(text, "{")
	j := strings.LastIndex(text, "}")
	if i == -1 || j == -1 || j <= i {
		return nil, false
	}

	var v interface{}
	if err := json.Unmarshal([]byte(text[i:j+1]), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

// cleanText strips the UTF-8 BOM and NUL bytes MT5 pads buffers with, then
// trims surrounding whitespace. Invalid UTF-8 sequences are dropped rather
// than rejected.
func cleanText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	s := strings.ToValidUTF8(string(b), "")
	s = strings.ReplaceAll(s, "\uFEFF", "")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// preview returns a best-effort decoded prefix of the body for diagnostics.
func preview(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	b := raw
	if len(b) > previewLimit {
		b = b[:previewLimit]
	}
	if utf8.Valid(b) {
		return string(b)
	}
	// latin-1 style fallback: every byte becomes a rune, nothing is lost
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
