package fix

import "maps"

// Ledger counts the finding instances fixed during one run, per identifier.
// Only bulk entries gate later bulk attempts.
type Ledger struct {
	bulk   map[string]int
	single map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{
		bulk:   make(map[string]int),
		single: make(map[string]int),
	}
}

func (l *Ledger) RecordBulk(id string, instances int) {
	l.bulk[id] += instances
}

func (l *Ledger) RecordSingle(id string) {
	l.single[id]++
}

// HasBulk reports whether a bulk fix was already applied for id.
func (l *Ledger) HasBulk(id string) bool {
	_, ok := l.bulk[id]
	return ok
}

// Bulk returns a copy of the bulk counts.
func (l *Ledger) Bulk() map[string]int {
	return maps.Clone(l.bulk)
}

// Single returns a copy of the single-fix counts.
func (l *Ledger) Single() map[string]int {
	return maps.Clone(l.single)
}

// Total returns the number of instances fixed by both strategies.
func (l *Ledger) Total() int {
	n := 0
	for _, v := range l.bulk {
		n += v
	}
	for _, v := range l.single {
		n += v
	}
	return n
}
