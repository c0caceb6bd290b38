package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"relayapi/src/ingest"
	"relayapi/src/model"
)

type eventAppender interface {
	Append(evt model.Event) int64
}

type eventReader interface {
	Since(sinceID int64) []model.Event
	SinceSeq(traderKey string, sinceSeq int64) []model.Event
}

// PublishHandler ingests one event from TREA: tolerant parse, validation,
// append. The response carries the assigned id, or the failure reason plus a
// diagnostic block when the body could not be parsed at all.
func PublishHandler(store eventAppender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			logger.WithError(err).Error("failed to read publish body")
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"ok": false, "error": "internal: read body",
			})
			return
		}

		contentType := r.Header.Get("Content-Type")

		// Some MT5 senders wrap the payload in form fields; hand those to
		// the normalizer as the last-resort strategy.
		form := url.Values{}
		if strings.Contains(contentType, "application/x-www-form-urlencoded") {
			if parsed, err := url.ParseQuery(strings.TrimRight(string(raw), "\x00")); err == nil {
				form = parsed
			}
		}

		obj, err := ingest.Normalize(raw, contentType, form)
		if err != nil {
			var bad *model.BadPayloadError
			if errors.As(err, &bad) {
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{
					"ok":    false,
					"error": bad.Error(),
					"diag":  bad.Diag,
				})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"ok": false, "error": "internal: normalize",
			})
			return
		}

		evt, err := ingest.Validate(obj)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"ok": false, "error": err.Error(),
			})
			return
		}

		id := store.Append(*evt)

		logger.WithFields(map[string]interface{}{
			"id":         id,
			"trader_key": evt.TraderKey,
			"action":     evt.Action,
			"symbol":     evt.Symbol,
		}).Debug("Event published")

		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "id": id})
	}
}

// StreamNDJSONHandler serves the FWEA consumption stream, one compact JSON
// event per line.
//
// Cursors:
//   - keyed: ?trader_key=K&since_seq=N -> events for K with seq > N, by (seq, id)
//   - legacy: ?since=ID -> events with id > ID, by id
//
// An unparseable watermark falls back to 0 rather than failing; a consumer
// with a corrupt cursor re-reads from the beginning instead of stalling.
func StreamNDJSONHandler(store eventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traderKey := strings.TrimSpace(r.URL.Query().Get("trader_key"))
		sinceSeqRaw := strings.TrimSpace(r.URL.Query().Get("since_seq"))

		var events []model.Event
		if traderKey != "" && sinceSeqRaw != "" {
			sinceSeq, err := strconv.ParseInt(sinceSeqRaw, 10, 64)
			if err != nil {
				sinceSeq = 0
			}
			events = store.SinceSeq(traderKey, sinceSeq)
		} else {
			sinceRaw := strings.TrimSpace(r.URL.Query().Get("since"))
			since, err := strconv.ParseInt(sinceRaw, 10, 64)
			if err != nil {
				since = 0
			}
			events = store.Since(since)
		}

		w.Header().Set("Content-Type", "application/x-ndjson")

		enc := json.NewEncoder(w)
		flusher, _ := w.(http.Flusher)
		for i := range events {
			if err := enc.Encode(&events[i]); err != nil {
				logger.WithError(err).Error("failed to encode stream event")
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
