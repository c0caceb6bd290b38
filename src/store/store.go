// Package store implements the relay's event log: an append-only, mutex
// guarded in-memory sequence with a monotonic global id, two cursor read
// models (global id and per-trader seq) and an optional JSONL durable log
// used purely for crash recovery.
//
// Durability contract: Append commits in memory and reports success on that
// commit. The durable write (and the optional archiver) run afterwards and
// their failures are logged, never returned: the live stream stays available
// even when the disk does not. Do not upgrade this to strict durability
// without revisiting the availability behavior of the publish path.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"relayapi/src/model"
)

// Archiver mirrors appended events into a secondary sink (e.g. a relational
// archive). Same best-effort contract as the durable log.
type Archiver interface {
	Archive(evt model.Event) error
}

// Stats is a read-only snapshot of the store.
type Stats struct {
	Count       int    `json:"count"`
	LastID      int64  `json:"last_id"`
	UptimeS     int64  `json:"uptime_s"`
	PersistPath string `json:"persist_path"`
}

// EventStore is shared by every request handler; all methods are safe for
// concurrent use.
type EventStore struct {
	mu     sync.Mutex
	events []model.Event
	lastID int64

	createdAt time.Time
	persister *persister
	archiver  Archiver

	nextSubID int64
	subs      map[int64]chan model.Event
}

// timeNow is swapped in tests that pin the store clock.
var timeNow = time.Now

// New creates a store. When persistPath is non-empty, previously persisted
// events are reloaded and the id counter resumes from the maximum id seen, so
// a restart never reissues an id.
func New(persistPath string) *EventStore {
	s := &EventStore{
		createdAt: timeNow(),
		subs:      make(map[int64]chan model.Event),
	}

	if persistPath != "" {
		s.persister = newPersister(persistPath)
		events, lastID := s.persister.load()
		s.events = events
		s.lastID = lastID

		logger.WithFields(map[string]interface{}{
			"persist_path": persistPath,
			"count":        len(events),
			"last_id":      lastID,
		}).Info("Event store recovered from durable log")
	}

	return s
}

// SetArchiver installs the optional archive sink. Call before serving.
func (s *EventStore) SetArchiver(a Archiver) {
	s.archiver = a
}

// Append assigns the next global id, stamps server_ts, defaults ts when the
// caller left it unset, and commits the event to the in-memory log. The
// returned id is assigned atomically with the sequence position. The durable
// write happens after the lock is released.
func (s *EventStore) Append(evt model.Event) int64 {
	now := timeNow().Unix()

	s.mu.Lock()
	s.lastID++
	evt.ID = s.lastID
	evt.ServerTs = now
	if evt.Ts == 0 {
		evt.Ts = now
	}
	s.events = append(s.events, evt)

	// Live-tail delivery is lossy on purpose: a slow subscriber drops
	// events instead of stalling the publish path. The sends stay under
	// the lock so a concurrent cancel cannot close a channel mid fan-out.
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.append(evt); err != nil {
			logger.WithError(err).WithField("id", evt.ID).
				Warn("Failed to persist event, in-memory log remains authoritative")
		}
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(evt); err != nil {
			logger.WithError(err).WithField("id", evt.ID).
				Warn("Failed to archive event")
		}
	}

	return evt.ID
}

// Since returns every event with id > sinceID (all events when sinceID <= 0),
// sorted ascending by id. The snapshot is taken under the lock; callers own
// the returned slice.
func (s *EventStore) Since(sinceID int64) []model.Event {
	s.mu.Lock()
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if sinceID <= 0 || e.ID > sinceID {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SinceSeq returns events for the given trader key with seq > sinceSeq,
// sorted ascending by (seq, id). Events without a seq count as seq 0 and fall
// out once the cursor has advanced past 0. An empty key matches nothing.
func (s *EventStore) SinceSeq(traderKey string, sinceSeq int64) []model.Event {
	tk := strings.TrimSpace(traderKey)
	if tk == "" {
		return []model.Event{}
	}

	s.mu.Lock()
	out := make([]model.Event, 0)
	for _, e := range s.events {
		if e.TraderKey != tk {
			continue
		}
		if e.Seq > sinceSeq {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LastSeqByKey scans newest-first and reports, for up to limit distinct
// trader keys, the seq carried by the latest event of that key. Consumers use
// this to rediscover their cursor after losing state.
func (s *EventStore) LastSeqByKey(limit int) map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := make(map[string]int64)
	for i := len(s.events) - 1; i >= 0; i-- {
		tk := s.events[i].TraderKey
		if tk == "" {
			continue
		}
		if _, seen := last[tk]; seen {
			continue
		}
		last[tk] = s.events[i].Seq
		if len(last) >= limit {
			break
		}
	}
	return last
}

// Stats returns a read-only snapshot for the health endpoint.
func (s *EventStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := ""
	if s.persister != nil {
		path = s.persister.path
	}
	return Stats{
		Count:       len(s.events),
		LastID:      s.lastID,
		UptimeS:     int64(timeNow().Sub(s.createdAt).Seconds()),
		PersistPath: path,
	}
}

// Close releases the durable log file handle. A later Append reopens it.
func (s *EventStore) Close() error {
	if s.persister != nil {
		return s.persister.Close()
	}
	return nil
}

// Subscribe registers a live-tail channel receiving every event appended
// after the call. The returned cancel func must be called when done; it
// closes the channel.
func (s *EventStore) Subscribe(buffer int) (<-chan model.Event, func()) {
	ch := make(chan model.Event, buffer)

	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

