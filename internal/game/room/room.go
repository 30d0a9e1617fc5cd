// Package room provides two-party game sessions and the registry that owns
// them. A Room is created only by pairing two queued connections and is
// destroyed by leave or disconnect; there is no paused state in between.
package room

import (
	"sync"

	"github.com/cory-johannsen/roshambo/internal/game/outcome"
)

// Role identifies one of the two fixed participant positions in a room.
type Role int

const (
	RoleFirst Role = iota
	RoleSecond
)

// Other returns the opposing role.
func (r Role) Other() Role {
	if r == RoleFirst {
		return RoleSecond
	}
	return RoleFirst
}

// String returns the wire name of the role.
func (r Role) String() string {
	if r == RoleFirst {
		return "player1"
	}
	return "player2"
}

// Stopper cancels a pending delayed notification tied to a room.
type Stopper interface {
	Stop()
}

// slot holds one participant's per-match state.
type slot struct {
	connID       string
	nickname     string
	score        int
	move         outcome.Move
	hasMove      bool
	wantsRematch bool
}

// Room is a session between exactly two participants. All methods are safe
// for concurrent use; no lock is ever held across a timer wait.
type Room struct {
	id        string
	threshold int

	mu        sync.Mutex
	slots     [2]slot
	round     int
	matchOver bool
	winner    outcome.Result
	closed    bool
	timers    []Stopper
}

func newRoom(id string, firstConn, firstNick, secondConn, secondNick string, threshold int) *Room {
	return &Room{
		id:        id,
		threshold: threshold,
		round:     1,
		slots: [2]slot{
			{connID: firstConn, nickname: firstNick},
			{connID: secondConn, nickname: secondNick},
		},
	}
}

// ID returns the unique room identifier.
func (r *Room) ID() string { return r.id }

// ConnID returns the connection ID occupying the given role.
func (r *Room) ConnID(role Role) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[role].connID
}

// Nickname returns the display name of the given role.
func (r *Room) Nickname(role Role) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[role].nickname
}

// RoleOf returns the role occupied by connID.
//
// Postcondition: ok is false when connID occupies neither slot.
func (r *Room) RoleOf(connID string) (Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roleOfLocked(connID)
}

func (r *Room) roleOfLocked(connID string) (Role, bool) {
	for i := range r.slots {
		if r.slots[i].connID == connID {
			return Role(i), true
		}
	}
	return 0, false
}

// Round returns the current round number, starting at 1.
func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// Scores returns the running scores for the first and second slot.
func (r *Room) Scores() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[RoleFirst].score, r.slots[RoleSecond].score
}

// MatchOver reports whether a side has reached the win threshold.
func (r *Room) MatchOver() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matchOver
}

// Winner returns the deciding side once the match is over.
func (r *Room) Winner() (Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.matchOver {
		return 0, false
	}
	if r.winner == outcome.SecondWins {
		return RoleSecond, true
	}
	return RoleFirst, true
}

// Closed reports whether the room has been destroyed.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// TrackTimer registers a pending delayed notification so Close can cancel
// it. A timer tracked after Close is stopped immediately.
func (r *Room) TrackTimer(t Stopper) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		t.Stop()
		return
	}
	r.timers = append(r.timers, t)
	r.mu.Unlock()
}

// Close marks the room destroyed and cancels all pending timers.
// Idempotent; returns false when the room was already closed.
//
// Postcondition: No tracked timer callback emits after Close returns, and
// every in-flight operation on the room observes the closed flag.
func (r *Room) Close() bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.closed = true
	timers := r.timers
	r.timers = nil
	r.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	return true
}

// SubmitDisposition classifies the effect of a move submission.
type SubmitDisposition int

const (
	// SubmitDropped means the submission was silently ignored: room closed,
	// match already over, unknown sender, or a move already locked in.
	SubmitDropped SubmitDisposition = iota
	// SubmitLocked means the move was recorded and the opponent has not
	// answered yet.
	SubmitLocked
	// SubmitResolved means both moves are in and the round was resolved.
	SubmitResolved
)

// RoundResult is a snapshot of a resolved round, captured atomically with
// the resolution so later notifications cannot observe torn state.
type RoundResult struct {
	Round       int
	FirstMove   outcome.Move
	SecondMove  outcome.Move
	Verdict     outcome.Result
	ScoreFirst  int
	ScoreSecond int
	MatchOver   bool
	MatchWinner outcome.Result
}

// SubmitMove records connID's move for the current round. The first
// submission locks in; a repeat before the opponent answers is dropped.
// When both slots hold moves the round resolves: exactly one score
// increments (or neither on draw), moves clear, and the round advances.
//
// Postcondition: On SubmitLocked, from is the submitter's role. On
// SubmitResolved, result holds the full round snapshot.
func (r *Room) SubmitMove(connID string, m outcome.Move) (disp SubmitDisposition, from Role, result RoundResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.matchOver {
		return SubmitDropped, 0, RoundResult{}
	}
	role, ok := r.roleOfLocked(connID)
	if !ok {
		return SubmitDropped, 0, RoundResult{}
	}
	if r.slots[role].hasMove {
		return SubmitDropped, 0, RoundResult{}
	}

	r.slots[role].move = m
	r.slots[role].hasMove = true

	other := role.Other()
	if !r.slots[other].hasMove {
		return SubmitLocked, role, RoundResult{}
	}

	first := r.slots[RoleFirst].move
	second := r.slots[RoleSecond].move
	verdict := outcome.Resolve(first, second)
	switch verdict {
	case outcome.FirstWins:
		r.slots[RoleFirst].score++
	case outcome.SecondWins:
		r.slots[RoleSecond].score++
	}

	winner, over := outcome.MatchWinner(r.slots[RoleFirst].score, r.slots[RoleSecond].score, r.threshold)

	result = RoundResult{
		Round:       r.round,
		FirstMove:   first,
		SecondMove:  second,
		Verdict:     verdict,
		ScoreFirst:  r.slots[RoleFirst].score,
		ScoreSecond: r.slots[RoleSecond].score,
		MatchOver:   over,
	}
	if over {
		result.MatchWinner = winner
		r.matchOver = true
		r.winner = winner
	}

	r.slots[RoleFirst].hasMove = false
	r.slots[RoleSecond].hasMove = false
	r.round++

	return SubmitResolved, role, result
}

// RematchDisposition classifies the effect of a rematch request.
type RematchDisposition int

const (
	// RematchDropped means the request was ignored: room closed, match not
	// over, or unknown sender.
	RematchDropped RematchDisposition = iota
	// RematchNoted means the sender's intent was recorded; the opponent has
	// not agreed yet.
	RematchNoted
	// RematchAgreed means both sides opted in.
	RematchAgreed
)

// RequestRematch records connID's intent to play again. Requires the match
// to be over. Duplicate requests from the same side are dropped.
func (r *Room) RequestRematch(connID string) (RematchDisposition, Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.matchOver {
		return RematchDropped, 0
	}
	role, ok := r.roleOfLocked(connID)
	if !ok {
		return RematchDropped, 0
	}
	if r.slots[role].wantsRematch {
		return RematchDropped, 0
	}

	r.slots[role].wantsRematch = true
	if r.slots[role.Other()].wantsRematch {
		return RematchAgreed, role
	}
	return RematchNoted, role
}

// reset returns the room to a fresh round 1 for the same two participants.
// Scores, moves, rematch intent, round counter and the matchOver flag all
// clear; identity and registry entries are untouched.
func (r *Room) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		r.slots[i].score = 0
		r.slots[i].hasMove = false
		r.slots[i].wantsRematch = false
	}
	r.round = 1
	r.matchOver = false
	r.winner = outcome.Draw
}
