package audit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"
)

// Entry records one privileged API action on a subject's baselines.
type Entry struct {
	ID            string
	Actor         string
	Role          string
	Action        string
	SubjectID     string
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "audit-" + hex.EncodeToString(buf)
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (e Entry) withDefaults(now time.Time) Entry {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
	if e.PayloadDigest == "" {
		e.PayloadDigest = DigestJSON(e.Metadata)
	}
	return e
}

// LogLogger writes entries as log lines. Used when no database is configured.
type LogLogger struct {
	logger *log.Logger
}

// NewLogLogger constructs a LogLogger.
func NewLogLogger(logger *log.Logger) *LogLogger {
	if logger == nil {
		logger = log.Default()
	}
	return &LogLogger{logger: logger}
}

// Log prints the entry.
func (l *LogLogger) Log(_ context.Context, entry Entry) error {
	entry = entry.withDefaults(time.Now())
	l.logger.Printf("audit id=%s actor=%s role=%s action=%s subject=%s ip=%s digest=%s",
		entry.ID, entry.Actor, entry.Role, entry.Action, entry.SubjectID, entry.IP, entry.PayloadDigest)
	return nil
}
