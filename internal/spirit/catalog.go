package spirit

import "sort"

// Catalog maps sanitized entity names to their records. It is built
// fresh on every load by merging the configured sources in order, so
// it never needs to be persisted.
type Catalog struct {
	records map[string]*Record
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{records: make(map[string]*Record)}
}

// Len reports the number of records held.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Lookup resolves name to its record, or nil when the catalog has
// none. The argument may be a raw display name or an already
// sanitized key.
func (c *Catalog) Lookup(name string) *Record {
	return c.records[Sanitize(name)]
}

// Put merges rec into the record stored under name, inserting a copy
// when the name is new. It reports whether any stored data changed.
func (c *Catalog) Put(name string, rec *Record) bool {
	if rec == nil {
		return false
	}
	key := Sanitize(name)
	if key == "" {
		return false
	}
	existing, ok := c.records[key]
	if !ok {
		c.records[key] = rec.Clone()
		return true
	}
	return existing.Merge(rec)
}

// Append merges every record of other into c under the same keys,
// field-level: set fields in other win, unset fields never erase.
// It reports whether anything changed, so callers can log how an
// override pass landed.
func (c *Catalog) Append(other *Catalog) bool {
	if other == nil {
		return false
	}
	changed := false
	for key, rec := range other.records {
		if c.Put(key, rec) {
			changed = true
		}
	}
	return changed
}

// Keys returns the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.records))
	for k := range c.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each visits every record in key order.
func (c *Catalog) Each(fn func(key string, rec *Record)) {
	for _, k := range c.Keys() {
		fn(k, c.records[k])
	}
}

// Finalize normalizes every record in place. It runs once, after all
// sources and addenda have been merged.
func (c *Catalog) Finalize() {
	for _, rec := range c.records {
		rec.Normalize()
	}
}
