package battlelog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// SchemaVersion is stamped into every persisted log document. Loading
// a document with a different stamp marks it dirty so it gets written
// back out in the current shape.
const SchemaVersion = 2

// Settings is the per-save options block persisted with the log.
type Settings struct {
	PlayerNames []string `json:"player_names"`
}

// Log is one save's battle log: entries keyed by sanitized entity
// name, plus the player roster they are tallied against. A single Log
// is current per session and is handed by reference into the stat
// engine.
type Log struct {
	Version   int               `json:"version"`
	Settings  Settings          `json:"settings"`
	Entries   map[string]*Entry `json:"entries"`
	LastAdded string            `json:"last_added,omitempty"`
}

// NewLog returns an empty log for the given player roster.
func NewLog(playerNames []string) *Log {
	return &Log{
		Version:  SchemaVersion,
		Settings: Settings{PlayerNames: append([]string(nil), playerNames...)},
		Entries:  make(map[string]*Entry),
	}
}

// PlayerCount reports how many seats are configured.
func (l *Log) PlayerCount() int {
	return len(l.Settings.PlayerNames)
}

// PlayerName resolves p to a display name. The shared bucket and
// seats beyond the roster get stable fallbacks rather than errors, so
// stale winner references survive a shrunken roster.
func (l *Log) PlayerName(p PlayerRef) string {
	if p.IsShared() {
		return "Shared"
	}
	i := p.SeatIndex()
	if i < len(l.Settings.PlayerNames) {
		return l.Settings.PlayerNames[i]
	}
	return fmt.Sprintf("Player %d", i+1)
}

// AddOrUpdate normalizes name into the log's key space and inserts or
// replaces its entry, repairing the entry on the way in. It reports
// whether the key is new to the log; only a new key moves LastAdded.
func (l *Log) AddOrUpdate(name string, e *Entry) bool {
	if l.Entries == nil {
		l.Entries = make(map[string]*Entry)
	}
	key := spirit.Sanitize(name)
	if e.DisplayName == "" {
		e.DisplayName = strings.TrimSpace(name)
	}
	e.Repair(l.PlayerCount())
	_, existed := l.Entries[key]
	l.Entries[key] = e
	if !existed {
		l.LastAdded = key
	}
	return !existed
}

// Get returns the entry for name, nil when absent.
func (l *Log) Get(name string) *Entry {
	return l.Entries[spirit.Sanitize(name)]
}

// Remove deletes name's entry and reports whether anything was there.
// A miss is a no-op the caller may log.
func (l *Log) Remove(name string) bool {
	key := spirit.Sanitize(name)
	if _, ok := l.Entries[key]; !ok {
		return false
	}
	delete(l.Entries, key)
	if l.LastAdded == key {
		l.LastAdded = ""
	}
	return true
}

// UpdateLoss adjusts the loss counter owned by p on name's entry and
// repairs the touched entry. It reports whether the entry exists.
func (l *Log) UpdateLoss(name string, p PlayerRef, delta int) bool {
	e := l.Get(name)
	if e == nil {
		return false
	}
	e.AddLosses(p, delta)
	e.Repair(l.PlayerCount())
	return true
}

// SetWinner records p as the winner of name's entry and repairs it.
// It reports whether the entry exists.
func (l *Log) SetWinner(name string, p PlayerRef) bool {
	e := l.Get(name)
	if e == nil {
		return false
	}
	e.Winner = p
	e.Repair(l.PlayerCount())
	return true
}

// Len reports the number of entries.
func (l *Log) Len() int {
	return len(l.Entries)
}

// Keys returns the entry keys in sorted order.
func (l *Log) Keys() []string {
	keys := make([]string, 0, len(l.Entries))
	for k := range l.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each visits entries in key order.
func (l *Log) Each(fn func(key string, e *Entry)) {
	for _, k := range l.Keys() {
		fn(k, l.Entries[k])
	}
}

// Validate implements the persisted-document contract: structural
// repair plus the schema-version stamp check. False means the log
// changed and the caller should persist it again.
func (l *Log) Validate() bool {
	clean := true
	if l.Entries == nil {
		l.Entries = make(map[string]*Entry)
		clean = false
	}
	count := l.PlayerCount()
	for _, e := range l.Entries {
		if e.Repair(count) {
			clean = false
		}
	}
	if _, ok := l.Entries[l.LastAdded]; l.LastAdded != "" && !ok {
		l.LastAdded = ""
		clean = false
	}
	if l.Version != SchemaVersion {
		l.Version = SchemaVersion
		clean = false
	}
	return clean
}
