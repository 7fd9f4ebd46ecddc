package transcript

import (
	"strings"
	"sync"
)

// NoticePrefix marks answer-only entries that record a non-conversational
// event. The literal is part of the export format and of the backend's
// history payloads, so it cannot change without breaking old exports.
const NoticePrefix = "🗂 Uploaded File: "

// Entry is one question/answer exchange, or an upload notice when the
// question is empty. History hydration keeps whatever the server sent,
// including entries with only one side filled in.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewNotice builds the answer-only entry recorded after a successful file
// upload.
func NewNotice(fileName string) Entry {
	return Entry{Answer: NoticePrefix + fileName}
}

// IsNotice reports whether the entry is an upload notice rather than an
// exchange.
func (e Entry) IsNotice() bool {
	return e.Question == "" && strings.HasPrefix(e.Answer, NoticePrefix)
}

// Log is the ordered, append-only in-memory record of the active session's
// exchanges. It is the source of truth for export and re-rendering; it is
// reset exactly when the current session changes.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

// Append adds one entry at the end.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Replace swaps the whole log for the given entries, used when hydrating
// from server-side history after a session switch.
func (l *Log) Replace(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry(nil), entries...)
}

// Reset empties the log.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Entries returns a copy of the log in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
