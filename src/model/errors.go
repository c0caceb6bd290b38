package model

import (
	"fmt"
	"strings"
)

// BadPayloadDiag carries what the normalizer saw before giving up, so that
// operators can debug broken senders without re-capturing traffic.
type BadPayloadDiag struct {
	ContentType string `json:"content_type"`
	RawLen      int    `json:"raw_len"`
	RawPreview  string `json:"raw_preview"`
}

// BadPayloadError means no parse strategy could turn the request body into a
// JSON object.
type BadPayloadError struct {
	Diag BadPayloadDiag
}

func (e *BadPayloadError) Error() string {
	return "Body must be a JSON object"
}

// MissingFieldsError names every required field absent from the payload, not
// just the first one found.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("Missing fields: %s", strings.Join(e.Fields, ", "))
}

// InvalidTypesError wraps the first coercion failure encountered while typing
// the payload fields.
type InvalidTypesError struct {
	Reason error
}

func (e *InvalidTypesError) Error() string {
	return fmt.Sprintf("Invalid types: %v", e.Reason)
}

func (e *InvalidTypesError) Unwrap() error {
	return e.Reason
}

// UnsupportedActionError reports an action outside the accepted set. Action is
// the already upper-cased value.
type UnsupportedActionError struct {
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("Unsupported action: %s", e.Action)
}
