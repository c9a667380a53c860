// Package report accumulates formatted records and serializes the final
// three-section report.
package report

import (
	"sort"
	"strconv"
	"strings"

	"logreport/internal/record"
)

// UserSet is a set of user ids that remembers insertion order.
type UserSet struct {
	seen  map[string]struct{}
	order []string
}

// NewUserSet creates an empty UserSet.
func NewUserSet() *UserSet {
	return &UserSet{seen: make(map[string]struct{})}
}

// Add inserts id and reports whether it was new.
func (s *UserSet) Add(id string) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports whether id is in the set.
func (s *UserSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of distinct ids.
func (s *UserSet) Len() int { return len(s.order) }

// Ordered returns the ids in insertion order. The slice is a copy.
func (s *UserSet) Ordered() []string {
	return append([]string(nil), s.order...)
}

// Sorted returns the ids in ascending byte order. The slice is a copy.
func (s *UserSet) Sorted() []string {
	out := s.Ordered()
	sort.Strings(out)
	return out
}

// Stats summarises what a builder holds.
type Stats struct {
	Records     int `json:"records"`
	IDs         int `json:"ids"`
	UniqueUsers int `json:"unique_users"`
}

// Builder collects records in arrival order, every record id, and the distinct
// user ids.
type Builder struct {
	records []record.Record
	ids     []string
	users   *UserSet
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{users: NewUserSet()}
}

// Append adds a record. Its id is always kept; its user id only the first time.
func (b *Builder) Append(r record.Record) {
	b.records = append(b.records, r)
	b.ids = append(b.ids, r.ID)
	b.users.Add(r.UserID)
}

// Records returns the records in arrival order. The slice is a copy.
func (b *Builder) Records() []record.Record {
	return append([]record.Record(nil), b.records...)
}

// Stats returns the current counts.
func (b *Builder) Stats() Stats {
	return Stats{
		Records:     len(b.records),
		IDs:         len(b.ids),
		UniqueUsers: b.users.Len(),
	}
}

// Build serializes the report:
//
//	one userId|bytesTx|bytesRx|datetime|id line per record, in arrival order
//	a blank line
//	every id, sorted
//	a blank line
//	"[rank] userId" for each distinct user id, sorted, rank starting at 1
//
// Lines are separated by "\n" with no trailing newline. Sorting is by raw
// byte value. Build leaves the builder unchanged and may be called repeatedly.
func (b *Builder) Build() string {
	lines := make([]string, 0, len(b.records)+len(b.ids)+b.users.Len()+2)

	for _, r := range b.records {
		lines = append(lines, r.Line())
	}

	lines = append(lines, "")
	ids := append([]string(nil), b.ids...)
	sort.Strings(ids)
	lines = append(lines, ids...)

	lines = append(lines, "")
	for i, u := range b.users.Sorted() {
		lines = append(lines, "["+strconv.Itoa(i+1)+"] "+u)
	}

	return strings.Join(lines, "\n")
}
