package cart

import (
	"time"

	"github.com/smartcart/smartcart-backend/pkg/enums"
)

// echoPending opens a batch whose size is only known once the remote call
// returns (deletes and clears report how many rows they removed).
const echoPending = -1

// echoBatch counts the feed events one remote write of this engine will
// produce. Until it is settled it absorbs matching events and remembers how
// many; once settled it absorbs exactly the rest.
type echoBatch struct {
	id        uint64
	settled   bool
	remaining int
	absorbed  int
}

// echoToken marks a (ref, kind) pair covered by a batch.
type echoToken struct {
	batch *echoBatch
	ref   string
	kind  enums.FeedEventType
	at    time.Time
}

type echoLedger struct {
	window time.Duration
	nextID uint64
	tokens []echoToken
}

// record opens a batch covering refs. count is the number of events the
// write produces, or echoPending when the caller settles it later.
func (l *echoLedger) record(kind enums.FeedEventType, at time.Time, count int, refs ...string) uint64 {
	l.nextID++
	b := &echoBatch{id: l.nextID}
	if count >= 0 {
		b.settled = true
		b.remaining = count
	}
	if b.settled && b.remaining == 0 {
		return b.id
	}
	for _, ref := range refs {
		l.tokens = append(l.tokens, echoToken{batch: b, ref: ref, kind: kind, at: at})
	}
	return b.id
}

// settle fixes the size of a pending batch to count events. Events already
// absorbed while it was pending are subtracted.
func (l *echoLedger) settle(id uint64, count int) {
	for _, t := range l.tokens {
		if t.batch.id != id {
			continue
		}
		b := t.batch
		b.settled = true
		b.remaining = count - b.absorbed
		if b.remaining <= 0 {
			l.drop(id)
		}
		return
	}
}

// withdraw forgets a batch whose remote write failed or was skipped.
func (l *echoLedger) withdraw(id uint64) {
	l.drop(id)
}

// consume reports whether an event of kind for ref is an echo, using up one
// unit of the matching batch.
func (l *echoLedger) consume(ref string, kind enums.FeedEventType, now time.Time) bool {
	l.prune(now)
	for _, t := range l.tokens {
		if t.ref != ref || t.kind != kind {
			continue
		}
		b := t.batch
		if !b.settled {
			b.absorbed++
			return true
		}
		b.remaining--
		if b.remaining <= 0 {
			l.drop(b.id)
		}
		return true
	}
	return false
}

func (l *echoLedger) drop(id uint64) {
	kept := l.tokens[:0]
	for _, t := range l.tokens {
		if t.batch.id != id {
			kept = append(kept, t)
		}
	}
	l.tokens = kept
}

func (l *echoLedger) prune(now time.Time) {
	kept := l.tokens[:0]
	for _, t := range l.tokens {
		if now.Sub(t.at) <= l.window {
			kept = append(kept, t)
		}
	}
	l.tokens = kept
}

func (l *echoLedger) reset() {
	l.tokens = nil
}
