package ghost

import "time"

// ackTTL is the age past which an entry is pruned on the maintenance tick,
// whether or not it was acked.
const ackTTL = 5 * time.Minute

// ackEntry tracks the lifecycle of one sent message id. The table is owned
// exclusively by the actor's event loop goroutine; no locking is needed.
type ackEntry struct {
	sentAt time.Time
	acked  bool
}

// ackTable is a plain map wrapper kept as its own type so the pruning and
// lookup logic reads as one unit in the loop.
type ackTable map[string]*ackEntry

func newAckTable() ackTable {
	return make(ackTable)
}

func (t ackTable) record(id string, now time.Time) {
	t[id] = &ackEntry{sentAt: now}
}

func (t ackTable) markAcked(id string) bool {
	e, ok := t[id]
	if !ok || e.acked {
		return false
	}
	e.acked = true
	return true
}

// prune removes every entry older than ackTTL and returns how many were
// removed without ever being acked.
func (t ackTable) prune(now time.Time) int {
	expired := 0
	for id, e := range t {
		if now.Sub(e.sentAt) > ackTTL {
			if !e.acked {
				expired++
			}
			delete(t, id)
		}
	}
	return expired
}
