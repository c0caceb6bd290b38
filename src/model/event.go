package model

// Event is the unit stored and served by the relay. The JSON field names are
// the wire contract with both the TREA publisher and the FWEA consumer and
// must not change.
//
// ID and ServerTs are assigned by the store at append time and are never
// accepted from the caller. Seq is the publisher-side monotonic counter; an
// event without one does not participate in per-key cursoring.
type Event struct {
	ID int64 `json:"id"`
	// Seq 0 means "no counter" and is omitted from the wire, so an event
	// published with an explicit seq of 0 is served without the field.
	// Cursor semantics are unaffected: seq 0 never passes a watermark >= 0.
	Seq int64 `json:"seq,omitempty"`

	Ts       int64 `json:"ts"`
	ServerTs int64 `json:"server_ts"`

	TraderID  string `json:"trader_id"`
	TraderKey string `json:"trader_key,omitempty"`

	Action      string  `json:"action"`
	Symbol      string  `json:"symbol"`
	Volume      float64 `json:"volume"`
	StopLoss    float64 `json:"sl"`
	TakeProfit  float64 `json:"tp"`
	PositionID  int64   `json:"position_id"`
	DealTicket  int64   `json:"deal_ticket"`
	OrderTicket int64   `json:"order_ticket"`
	Magic       int64   `json:"magic"`
	Comment     string  `json:"comment"`

	AccBalance *float64 `json:"acc_balance,omitempty"`
	AccEquity  *float64 `json:"acc_equity,omitempty"`
}

// Actions the validator accepts after upper-casing the input.
const (
	ActionOpenBuy    = "OPEN_BUY"
	ActionOpenSell   = "OPEN_SELL"
	ActionModify     = "MODIFY"
	ActionClose      = "CLOSE"
	ActionBuy        = "BUY"
	ActionSell       = "SELL"
	ActionBuyMarket  = "BUY_MARKET"
	ActionSellMarket = "SELL_MARKET"

	// Legacy aliases still emitted by older TREA builds.
	ActionOpen     = "OPEN"
	ActionCloseAll = "CLOSE_ALL"
)

// SupportedActions is the full accepted action set, aliases included.
var SupportedActions = map[string]bool{
	ActionOpenBuy:    true,
	ActionOpenSell:   true,
	ActionModify:     true,
	ActionClose:      true,
	ActionBuy:        true,
	ActionSell:       true,
	ActionBuyMarket:  true,
	ActionSellMarket: true,
	ActionOpen:       true,
	ActionCloseAll:   true,
}
