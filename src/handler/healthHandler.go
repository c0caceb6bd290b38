package handler

import (
	"net/http"
	"time"

	"relayapi/src/store"
)

// lastSeqLimit caps the per-trader cursor map in the health payload.
const lastSeqLimit = 50

type storeInspector interface {
	Stats() store.Stats
	LastSeqByKey(limit int) map[string]int64
}

type healthResponse struct {
	Status string `json:"status"`
	Ts     int64  `json:"ts"`
	store.Stats
	LastSeqByTrader map[string]int64 `json:"last_seq_by_trader"`
}

// HealthHandler is the public heartbeat. Besides liveness it exposes the
// last-seen seq per trader key so consumers can bootstrap a lost cursor.
func HealthHandler(store storeInspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:          "ok",
			Ts:              time.Now().Unix(),
			Stats:           store.Stats(),
			LastSeqByTrader: store.LastSeqByKey(lastSeqLimit),
		})
	}
}
