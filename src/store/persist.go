package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	logger "github.com/sirupsen/logrus"

	"relayapi/src/model"
)

// persister owns the JSONL durable log: one complete event per line, created
// lazily (parent directories included) on the first successful append. Its
// own mutex keeps concurrent appenders from interleaving lines; the store's
// lock is never held across this I/O.
type persister struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func newPersister(path string) *persister {
	return &persister{path: path}
}

// load reads the durable log line by line. Malformed lines are skipped
// individually so a torn tail write never blocks startup. Events are
// re-sorted by id and the returned lastID is the maximum id observed.
func (p *persister) load() ([]model.Event, int64) {
	f, err := os.Open(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).WithField("persist_path", p.path).
				Warn("Failed to open durable log, starting empty")
		}
		return nil, 0
	}
	defer f.Close()

	var events []model.Event
	var lastID int64
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var evt model.Event
		if err := json.Unmarshal(line, &evt); err != nil {
			skipped++
			continue
		}
		events = append(events, evt)
		if evt.ID > lastID {
			lastID = evt.ID
		}
	}
	if err := scanner.Err(); err != nil {
		logger.WithError(err).WithField("persist_path", p.path).
			Warn("Durable log read stopped early")
	}
	if skipped > 0 {
		logger.WithFields(map[string]interface{}{
			"persist_path": p.path,
			"skipped":      skipped,
		}).Warn("Skipped malformed lines while recovering durable log")
	}

	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, lastID
}

// append writes one event as a single JSON line.
func (p *persister) append(evt model.Event) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		p.file = f
	}

	_, err = p.file.Write(append(b, '\n'))
	return err
}

// Close releases the durable log file handle.
func (p *persister) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}
