// Package match drives the per-room session state machine: move submission,
// round resolution, rematch negotiation, and teardown on leave or
// disconnect. It owns the pairing decision between the matchmaking queue
// and the room registry.
package match

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roshambo/internal/game/lobby"
	"github.com/cory-johannsen/roshambo/internal/game/outcome"
	"github.com/cory-johannsen/roshambo/internal/game/room"
	"github.com/cory-johannsen/roshambo/internal/protocol"
)

// Publisher delivers an outbound event to a single connection.
// Delivery is best-effort and must not block; events for connections that
// are already gone are discarded by the implementation.
type Publisher interface {
	Publish(connID string, ev protocol.Event)
}

// PublisherFunc adapts a plain function into a Publisher.
type PublisherFunc func(connID string, ev protocol.Event)

// Publish calls the underlying function.
func (f PublisherFunc) Publish(connID string, ev protocol.Event) { f(connID, ev) }

// NicknamePool hands out and reclaims display names for paired connections.
type NicknamePool interface {
	Generate() string
	Release(name string)
}

// Config holds the tunable parameters of the state machine.
type Config struct {
	// WinThreshold is the score that decides a match.
	WinThreshold int
	// FirstRoundDelay is the pause between pairing and the first start_round.
	FirstRoundDelay time.Duration
	// NextRoundDelay is the pause between a round_result and the next
	// start_round.
	NextRoundDelay time.Duration
	// MatchSummaryDelay is the pause between the deciding round_result and
	// the match_result summary.
	MatchSummaryDelay time.Duration
	// RematchRoundDelay is the pause between rematch_accepted and the fresh
	// start_round.
	RematchRoundDelay time.Duration
}

// DefaultConfig returns the stock best-of-3 timing.
func DefaultConfig() Config {
	return Config{
		WinThreshold:      2,
		FirstRoundDelay:   2 * time.Second,
		NextRoundDelay:    3 * time.Second,
		MatchSummaryDelay: 2 * time.Second,
		RematchRoundDelay: 1500 * time.Millisecond,
	}
}

// Coordinator applies client actions to the queue, registry and rooms.
// Invalid and stale actions are dropped silently: clients routinely send
// duplicate or late messages and must never receive an error for them.
type Coordinator struct {
	cfg    Config
	queue  *lobby.Queue
	rooms  *room.Registry
	names  NicknamePool
	pub    Publisher
	logger *zap.Logger

	// mu serializes the pop-or-enqueue pairing decision and room teardown
	// against it. Move and rematch handling stays outside: those are
	// room-local and must not block across rooms.
	mu sync.Mutex
}

// NewCoordinator wires the state machine to its collaborators.
//
// Precondition: all arguments must be non-nil; cfg.WinThreshold > 0.
func NewCoordinator(cfg Config, queue *lobby.Queue, rooms *room.Registry, names NicknamePool, pub Publisher, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		queue:  queue,
		rooms:  rooms,
		names:  names,
		pub:    pub,
		logger: logger,
	}
}

// Join handles a join_queue action. A connection that is already queued or
// already owns a room is dropped. Otherwise the oldest waiter, if any, is
// paired with the joiner: waiter takes the first slot, joiner the second.
// The whole decision runs under the coordinator mutex so two simultaneous
// joiners cannot both observe an empty queue and strand each other.
func (c *Coordinator) Join(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rooms.HasConn(connID) {
		c.logger.Debug("join from connection already in a room", zap.String("conn", connID))
		return
	}
	if c.queue.Contains(connID) {
		c.logger.Debug("join from connection already queued", zap.String("conn", connID))
		return
	}

	waiter, ok := c.queue.Pop()
	if !ok {
		c.queue.Enqueue(connID)
		c.logger.Debug("connection queued", zap.String("conn", connID), zap.Int("queue_len", c.queue.Len()))
		return
	}

	firstNick := c.names.Generate()
	secondNick := c.names.Generate()
	r := c.rooms.Create(waiter, firstNick, connID, secondNick, c.cfg.WinThreshold)

	c.logger.Info("room created",
		zap.String("room", r.ID()),
		zap.String("first", waiter),
		zap.String("second", connID),
	)

	c.pub.Publish(waiter, protocol.MatchFound(r.ID(), room.RoleFirst.String(), firstNick, secondNick))
	c.pub.Publish(connID, protocol.MatchFound(r.ID(), room.RoleSecond.String(), secondNick, firstNick))

	c.scheduleStartRound(r, c.cfg.FirstRoundDelay)
}

// SubmitMove handles a player_choice action. The submission locks in; the
// opponent gets an opponent_locked notice that does not reveal the move.
// When both moves are in, the round resolves and both sides get the
// round_result, followed after a delay by either the next start_round or
// the match_result summary.
func (c *Coordinator) SubmitMove(connID string, mv outcome.Move) {
	r, ok := c.rooms.ByConn(connID)
	if !ok {
		c.logger.Debug("move from connection without a room", zap.String("conn", connID))
		return
	}

	disp, from, result := r.SubmitMove(connID, mv)
	switch disp {
	case room.SubmitDropped:
		c.logger.Debug("move dropped",
			zap.String("room", r.ID()),
			zap.String("conn", connID),
		)

	case room.SubmitLocked:
		c.pub.Publish(r.ConnID(from.Other()), protocol.OpponentLocked())

	case room.SubmitResolved:
		payload := protocol.RoundResultPayload{
			Round:         result.Round,
			Player1Choice: result.FirstMove.String(),
			Player2Choice: result.SecondMove.String(),
			RoundWinner:   result.Verdict.String(),
			Scores:        protocol.Scores{Player1: result.ScoreFirst, Player2: result.ScoreSecond},
		}
		if result.MatchOver {
			payload.MatchWinner = result.MatchWinner.String()
		}
		c.publishBoth(r, protocol.RoundResult(payload))

		if result.MatchOver {
			c.logger.Info("match decided",
				zap.String("room", r.ID()),
				zap.String("winner", result.MatchWinner.String()),
				zap.Int("rounds", result.Round),
			)
			c.scheduleMatchResult(r, result)
		} else {
			c.scheduleStartRound(r, c.cfg.NextRoundDelay)
		}
	}
}

// RequestRematch handles a request_rematch action. Valid only once the
// match is over; the first request notifies the opponent, the second resets
// the room back to round 1 for the same participants.
func (c *Coordinator) RequestRematch(connID string) {
	r, ok := c.rooms.ByConn(connID)
	if !ok {
		c.logger.Debug("rematch request from connection without a room", zap.String("conn", connID))
		return
	}

	disp, from := r.RequestRematch(connID)
	switch disp {
	case room.RematchDropped:
		c.logger.Debug("rematch request dropped",
			zap.String("room", r.ID()),
			zap.String("conn", connID),
		)

	case room.RematchNoted:
		c.pub.Publish(r.ConnID(from.Other()), protocol.OpponentWantsRematch())

	case room.RematchAgreed:
		c.rooms.ResetForRematch(r)
		c.logger.Info("rematch accepted", zap.String("room", r.ID()))
		c.publishBoth(r, protocol.RematchAccepted())
		c.scheduleStartRound(r, c.cfg.RematchRoundDelay)
	}
}

// Leave handles an explicit leave_room action: the room is destroyed
// unconditionally and the other participant gets a single
// opponent_disconnected notice. Any in-flight round state is discarded.
func (c *Coordinator) Leave(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms.ByConn(connID)
	if !ok {
		c.logger.Debug("leave from connection without a room", zap.String("conn", connID))
		return
	}
	c.teardown(r, connID, "leave")
}

// Disconnect handles an abrupt connection close. The connection is removed
// from the queue if it was only waiting; if it owned a room, the room is
// torn down exactly as for an explicit leave.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue.Remove(connID)

	r, ok := c.rooms.ByConn(connID)
	if !ok {
		return
	}
	c.teardown(r, connID, "disconnect")
}

// teardown destroys the room and then notifies the survivor. Destroy runs
// first so no other connection can observe a stale mapping, and so pending
// timers are cancelled before the notice goes out.
func (c *Coordinator) teardown(r *room.Room, leaving, reason string) {
	role, ok := r.RoleOf(leaving)
	if !ok {
		return
	}
	survivor := r.ConnID(role.Other())
	firstNick := r.Nickname(room.RoleFirst)
	secondNick := r.Nickname(room.RoleSecond)

	c.rooms.Destroy(r)
	c.names.Release(firstNick)
	c.names.Release(secondNick)

	c.logger.Info("room destroyed",
		zap.String("room", r.ID()),
		zap.String("conn", leaving),
		zap.String("reason", reason),
	)

	c.pub.Publish(survivor, protocol.OpponentDisconnected())
}

// scheduleStartRound arranges a start_round notice after delay. The round
// number and scores are read at fire time. The notice is suppressed if the
// room was destroyed in the interim, and also if the match was decided
// first: both players may lock in their moves before the notice fires.
func (c *Coordinator) scheduleStartRound(r *room.Room, delay time.Duration) {
	t := NewTimer(delay, func() {
		if r.Closed() || r.MatchOver() {
			return
		}
		first, second := r.Scores()
		c.publishBoth(r, protocol.StartRound(r.Round(), first, second))
	})
	r.TrackTimer(t)
}

// scheduleMatchResult arranges the match_result summary after the configured
// delay. The payload is captured at decision time so a fast rematch cannot
// rewrite the final scores; only liveness is re-checked at fire time.
func (c *Coordinator) scheduleMatchResult(r *room.Room, result room.RoundResult) {
	payload := protocol.MatchResultPayload{
		Winner:          result.MatchWinner.String(),
		FinalScores:     protocol.Scores{Player1: result.ScoreFirst, Player2: result.ScoreSecond},
		Player1Nickname: r.Nickname(room.RoleFirst),
		Player2Nickname: r.Nickname(room.RoleSecond),
	}
	t := NewTimer(c.cfg.MatchSummaryDelay, func() {
		if r.Closed() {
			return
		}
		c.publishBoth(r, protocol.MatchResult(payload))
	})
	r.TrackTimer(t)
}

// publishBoth sends the same event to both participants.
func (c *Coordinator) publishBoth(r *room.Room, ev protocol.Event) {
	c.pub.Publish(r.ConnID(room.RoleFirst), ev)
	c.pub.Publish(r.ConnID(room.RoleSecond), ev)
}
