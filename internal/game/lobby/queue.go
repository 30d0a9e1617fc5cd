// Package lobby provides the matchmaking queue: an ordered set of
// connections waiting for an opponent.
package lobby

import "sync"

// Queue is a strict FIFO of connection IDs with at-most-once membership.
// All methods are safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	order   []string
	members map[string]bool
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		members: make(map[string]bool),
	}
}

// Enqueue appends connID to the tail of the queue.
// A connection already queued is left in place; the call is a silent no-op.
//
// Precondition: connID must be non-empty.
func (q *Queue) Enqueue(connID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.members[connID] {
		return
	}
	q.order = append(q.order, connID)
	q.members[connID] = true
}

// Pop removes and returns the head of the queue, the longest-waiting
// connection.
//
// Postcondition: Returns ("", false) when the queue is empty.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		return "", false
	}
	head := q.order[0]
	q.order = q.order[1:]
	delete(q.members, head)
	return head, true
}

// Remove deletes connID from the queue wherever it sits.
// Idempotent: removing an absent connection is a no-op.
func (q *Queue) Remove(connID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.members[connID] {
		return
	}
	delete(q.members, connID)
	for i, id := range q.order {
		if id == connID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether connID is currently queued.
func (q *Queue) Contains(connID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.members[connID]
}

// Len returns the number of waiting connections.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
