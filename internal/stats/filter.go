package stats

import (
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// Filter is a pure predicate over a battle entry and its resolved
// catalog record. The record may be nil for custom entries the
// catalog does not know.
type Filter interface {
	Match(e *battlelog.Entry, r *spirit.Record) bool
}

// MatchAll passes everything.
type MatchAll struct{}

func (MatchAll) Match(*battlelog.Entry, *spirit.Record) bool { return true }

// CommonFilter ANDs up to three optional equality checks. An unset
// check passes vacuously; a set check against a record that lacks the
// field fails.
type CommonFilter struct {
	Kind     *battlelog.Kind
	Affinity *spirit.Affinity
	Usage    *spirit.UsageType
}

func (f *CommonFilter) Match(e *battlelog.Entry, r *spirit.Record) bool {
	if f == nil {
		return true
	}
	if f.Kind != nil && (e == nil || e.Kind != *f.Kind) {
		return false
	}
	if f.Affinity != nil && (r == nil || r.Affinity == nil || *r.Affinity != *f.Affinity) {
		return false
	}
	if f.Usage != nil && (r == nil || r.UsageType == nil || *r.UsageType != *f.Usage) {
		return false
	}
	return true
}

// KeyFunc extracts the commonality key for an entry; ok is false when
// the entry has no key to rank by.
type KeyFunc func(e *battlelog.Entry, r *spirit.Record) (string, bool)

// CommonalityFilter is a CommonFilter that additionally drops entries
// whose commonality key is on an exclusion list. The filter is built
// before its owning stat exists, so the stat injects the key function
// afterwards via SetKeyFunc.
type CommonalityFilter struct {
	CommonFilter
	Exclude []string

	keyFn KeyFunc
}

// SetKeyFunc wires in the owning stat's key extraction.
func (f *CommonalityFilter) SetKeyFunc(fn KeyFunc) {
	f.keyFn = fn
}

func (f *CommonalityFilter) Match(e *battlelog.Entry, r *spirit.Record) bool {
	if f == nil {
		return true
	}
	if !f.CommonFilter.Match(e, r) {
		return false
	}
	if f.keyFn == nil || len(f.Exclude) == 0 {
		return true
	}
	key, ok := f.keyFn(e, r)
	if !ok {
		return true
	}
	for _, excluded := range f.Exclude {
		if strings.EqualFold(excluded, key) {
			return false
		}
	}
	return true
}
