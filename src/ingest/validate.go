package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"relayapi/src/model"
)

// RequiredFields is the exact required key set, in the order missing fields
// are reported.
var RequiredFields = []string{
	"ts",
	"trader_id",
	"action",
	"symbol",
	"volume",
	"sl",
	"tp",
	"position_id",
	"deal_ticket",
	"order_ticket",
	"magic",
	"comment",
}

// timeNow is swapped in tests that pin the ingest clock.
var timeNow = time.Now

// Validate checks the normalized payload and coerces it into an Event.
//
// Failure modes: *model.MissingFieldsError (every absent required key named),
// *model.InvalidTypesError (first coercion failure), and
// *model.UnsupportedActionError. A malformed timestamp is not a failure; it
// silently defaults to the ingest time.
func Validate(obj map[string]interface{}) (*model.Event, error) {
	var missing []string
	for _, k := range RequiredFields {
		if _, ok := obj[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &model.MissingFieldsError{Fields: missing}
	}

	evt := &model.Event{
		TraderID:  asString(obj["trader_id"]),
		TraderKey: asString(obj["trader_key"]),
		Symbol:    asString(obj["symbol"]),
		Comment:   asString(obj["comment"]),
		Ts:        coerceTimestamp(obj["ts"]),
	}

	var err error
	if evt.Volume, err = toFloat(obj["volume"]); err != nil {
		return nil, &model.InvalidTypesError{Reason: fmt.Errorf("volume: %w", err)}
	}
	if evt.StopLoss, err = toFloatDefault(obj["sl"], 0.0); err != nil {
		return nil, &model.InvalidTypesError{Reason: fmt.Errorf("sl: %w", err)}
	}
	if evt.TakeProfit, err = toFloatDefault(obj["tp"], 0.0); err != nil {
		return nil, &model.InvalidTypesError{Reason: fmt.Errorf("tp: %w", err)}
	}
	if evt.PositionID, err = toIntDefault(obj["position_id"], 0); err != nil {
		return nil, &model.InvalidTypesError{Reason: fmt.Errorf("position_id: %w", err)}
	}
	if evt.DealTicket, err = toIntDefault(obj["deal_ticket"], 0); err != nil {
		return nil, &model.InvalidTypesError{Reason: fmt.Errorf("deal_ticket: %w", err)}
	}
	if evt.OrderTicket, err = toIntDefault(obj["order_ticket"], 0); err != nil {
		return nil, &model.InvalidTypesError{Reason: fmt.Errorf("order_ticket: %w", err)}
	}
	if evt.Magic, err = toIntDefault(obj["magic"], 0); err != nil {
		return nil, &model.InvalidTypesError{Reason: fmt.Errorf("magic: %w", err)}
	}

	// Publisher-side monotonic counter, optional.
	if v, ok := obj["seq"]; ok {
		if evt.Seq, err = toIntDefault(v, 0); err != nil {
			return nil, &model.InvalidTypesError{Reason: fmt.Errorf("seq: %w", err)}
		}
	}

	// Optional proportionality fields from TREA.
	if v, ok := obj["acc_balance"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return nil, &model.InvalidTypesError{Reason: fmt.Errorf("acc_balance: %w", err)}
		}
		evt.AccBalance = &f
	}
	if v, ok := obj["acc_equity"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return nil, &model.InvalidTypesError{Reason: fmt.Errorf("acc_equity: %w", err)}
		}
		evt.AccEquity = &f
	}

	evt.Action = strings.ToUpper(asString(obj["action"]))
	if !model.SupportedActions[evt.Action] {
		return nil, &model.UnsupportedActionError{Action: evt.Action}
	}

	return evt, nil
}

// coerceTimestamp never fails: a non-integer timestamp is replaced by the
// ingest time, matching how the relay has always treated broken TREA clocks.
func coerceTimestamp(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		s := strings.TrimSpace(t)
		if s != "" && isDigits(s) {
			d, err := decimal.NewFromString(s)
			if err == nil {
				return d.IntPart()
			}
		}
	}
	return timeNow().Unix()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// toFloat coerces JSON numbers and numeric strings. Strings go through
// decimal so that values like "0.10" survive exactly as sent.
func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", t)
		}
		return d.InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("cannot parse %v as number", v)
	}
}

func toFloatDefault(v interface{}, def float64) (float64, error) {
	if v == nil {
		return def, nil
	}
	return toFloat(v)
}

// toIntDefault coerces JSON numbers (truncating) and integer strings.
func toIntDefault(v interface{}, def int64) (int64, error) {
	switch t := v.(type) {
	case nil:
		return def, nil
	case float64:
		return int64(t), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil || !d.IsInteger() {
			return 0, fmt.Errorf("cannot parse %q as integer", t)
		}
		return d.IntPart(), nil
	default:
		return 0, fmt.Errorf("cannot parse %v as integer", v)
	}
}
