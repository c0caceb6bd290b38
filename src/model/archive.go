package model

import "time"

// ArchivedEvent is the relational mirror of an appended event. The durable
// JSONL log stays the system of record for crash recovery; the archive exists
// for operator queries, so the primary key is the relay-assigned global id,
// never generated by the database.
type ArchivedEvent struct {
	ID  int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Seq int64 `gorm:"index" json:"seq"`

	Ts       int64 `json:"ts"`
	ServerTs int64 `json:"server_ts"`

	TraderID  string `gorm:"size:100;index" json:"trader_id"`
	TraderKey string `gorm:"size:100;index" json:"trader_key"`

	Action      string  `gorm:"size:20" json:"action"`
	Symbol      string  `gorm:"size:32" json:"symbol"`
	Volume      float64 `json:"volume"`
	StopLoss    float64 `json:"sl"`
	TakeProfit  float64 `json:"tp"`
	PositionID  int64   `json:"position_id"`
	DealTicket  int64   `json:"deal_ticket"`
	OrderTicket int64   `json:"order_ticket"`
	Magic       int64   `json:"magic"`
	Comment     string  `gorm:"type:text" json:"comment"`

	AccBalance *float64 `json:"acc_balance,omitempty"`
	AccEquity  *float64 `json:"acc_equity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName allows you to control the exact table name for archived events.
func (ArchivedEvent) TableName() string {
	return "archived_events"
}

// NewArchivedEvent converts a stored event into its archive row.
func NewArchivedEvent(evt Event) *ArchivedEvent {
	return &ArchivedEvent{
		ID:          evt.ID,
		Seq:         evt.Seq,
		Ts:          evt.Ts,
		ServerTs:    evt.ServerTs,
		TraderID:    evt.TraderID,
		TraderKey:   evt.TraderKey,
		Action:      evt.Action,
		Symbol:      evt.Symbol,
		Volume:      evt.Volume,
		StopLoss:    evt.StopLoss,
		TakeProfit:  evt.TakeProfit,
		PositionID:  evt.PositionID,
		DealTicket:  evt.DealTicket,
		OrderTicket: evt.OrderTicket,
		Magic:       evt.Magic,
		Comment:     evt.Comment,
		AccBalance:  evt.AccBalance,
		AccEquity:   evt.AccEquity,
	}
}
