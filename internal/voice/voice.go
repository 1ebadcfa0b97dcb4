// Package voice owns the speech side channel. Transmissions are queued
// with a priority and played by a single goroutine so radio calls never
// overlap; queue pressure is resolved by dropping routine traffic, never
// clearances.
package voice

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type Priority int

const (
	PriorityLow Priority = iota
	PriorityHigh
)

// Transmission is one utterance handed to the engine. Spoken is the
// phonetic form, Text the transcript form used for logging.
type Transmission struct {
	Text     string
	Spoken   string
	VoiceTag string
	Facility string
	Priority Priority
}

// Engine turns one transmission into audio (or a log line, for the
// fallback engine). Speak blocks until playback finishes.
type Engine interface {
	Speak(tx Transmission) error
}

// Queue is a bounded two-level transmission queue with one player
// goroutine. High transmissions are never dropped: when the backlog is
// full the oldest low item is evicted for them, and an all-high backlog
// simply grows. Low arrivals into a full backlog are rejected.
type Queue struct {
	mu       sync.Mutex
	high     []Transmission
	low      []Transmission
	capacity int
	wake     chan struct{}
	done     chan struct{}
	engine   Engine
	log      *logrus.Entry
}

func NewQueue(capacity int, engine Engine, log *logrus.Logger) *Queue {
	if capacity < 1 {
		capacity = 8
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	q := &Queue{
		capacity: capacity,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		engine:   engine,
		log:      log.WithField("role", "voice"),
	}
	go q.player()
	return q
}

// Enqueue is non-blocking. The boolean reports whether the transmission
// was accepted.
func (q *Queue) Enqueue(tx Transmission) bool {
	q.mu.Lock()
	if len(q.high)+len(q.low) >= q.capacity {
		if tx.Priority == PriorityLow {
			q.mu.Unlock()
			q.log.WithField("text", tx.Text).Debug("backlog full, advisory dropped")
			return false
		}
		if len(q.low) > 0 {
			q.log.WithField("text", q.low[0].Text).Debug("advisory evicted for priority transmission")
			q.low = q.low[1:]
		}
	}
	if tx.Priority == PriorityHigh {
		q.high = append(q.high, tx)
	} else {
		q.low = append(q.low, tx)
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Backlog reports the queued transmission count.
func (q *Queue) Backlog() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high) + len(q.low)
}

// Close stops the player after the current transmission.
func (q *Queue) Close() {
	close(q.done)
}

func (q *Queue) player() {
	for {
		tx, ok := q.pop()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		if err := q.engine.Speak(tx); err != nil {
			q.log.WithError(err).WithField("text", tx.Text).Warn("speech engine failed")
		}
	}
}

func (q *Queue) pop() (Transmission, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.high) > 0 {
		tx := q.high[0]
		q.high = q.high[1:]
		return tx, true
	}
	if len(q.low) > 0 {
		tx := q.low[0]
		q.low = q.low[1:]
		return tx, true
	}
	return Transmission{}, false
}
