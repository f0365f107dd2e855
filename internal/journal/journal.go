package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
)

// Action distinguishes admissions from cancellations.
type Action string

const (
	ActionAdmit  Action = "admit"
	ActionCancel Action = "cancel"
)

// Entry records one reservation admission or cancellation. Replaying
// the journal yields the net tickets per event, which must agree with
// the aggregate derived from the reservations table.
type Entry struct {
	Code      string    `json:"code"`
	EventID   uint      `json:"event_id"`
	UserID    uint      `json:"user_id"`
	Tickets   uint      `json:"tickets"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal is an append-only reservation log used for capacity
// reconciliation.
type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// New opens (or creates) the journal file.
func New(filePath string) (*Journal, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		filePath: filePath,
		file:     file,
	}, nil
}

// Append writes an entry and syncs it to disk.
func (j *Journal) Append(entry Entry) error {
	start := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("Journal: Failed to marshal entry",
			zap.String("code", entry.Code),
			zap.Error(err),
		)
		return err
	}

	if _, err := j.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("Journal: Failed to write to file",
			zap.String("code", entry.Code),
			zap.Error(err),
		)
		return err
	}

	// Force sync to disk (durability)
	if err := j.file.Sync(); err != nil {
		logger.Log.Error("Journal: Failed to sync to disk",
			zap.String("code", entry.Code),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Journal: Entry written and synced",
		zap.String("code", entry.Code),
		zap.String("action", string(entry.Action)),
		zap.Uint("event_id", entry.EventID),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// ReadAll returns every entry in write order.
func (j *Journal) ReadAll() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.readAllUnsafe()
}

// NetTickets replays the journal and returns the net admitted tickets
// for one event.
func (j *Journal) NetTickets(eventID uint) (int64, error) {
	totals, err := j.Reconcile()
	if err != nil {
		return 0, err
	}
	return totals[eventID], nil
}

// Reconcile replays the journal into net admitted tickets per event.
// Comparing the result against the stored aggregate surfaces any
// divergence introduced outside the admission path.
func (j *Journal) Reconcile() (map[uint]int64, error) {
	entries, err := j.ReadAll()
	if err != nil {
		return nil, err
	}

	totals := make(map[uint]int64)
	for _, entry := range entries {
		switch entry.Action {
		case ActionAdmit:
			totals[entry.EventID] += int64(entry.Tickets)
		case ActionCancel:
			totals[entry.EventID] -= int64(entry.Tickets)
		}
	}

	return totals, nil
}

// readAllUnsafe reads all entries without locking (internal use only)
func (j *Journal) readAllUnsafe() ([]Entry, error) {
	file, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			logger.Log.Warn("Journal: Skipping corrupt entry",
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Close flushes and closes the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.file.Sync(); err != nil {
		return err
	}
	return j.file.Close()
}
