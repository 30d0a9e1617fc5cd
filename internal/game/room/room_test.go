package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/roshambo/internal/game/outcome"
)

func newTestRoom(t *testing.T) (*Registry, *Room) {
	t.Helper()
	reg := NewRegistry()
	r := reg.Create("conn-a", "Alice", "conn-b", "Bob", 2)
	return reg, r
}

func TestRole_Other(t *testing.T) {
	assert.Equal(t, RoleSecond, RoleFirst.Other())
	assert.Equal(t, RoleFirst, RoleSecond.Other())
	assert.Equal(t, "player1", RoleFirst.String())
	assert.Equal(t, "player2", RoleSecond.String())
}

func TestRoom_InitialState(t *testing.T) {
	_, r := newTestRoom(t)

	assert.NotEmpty(t, r.ID())
	assert.Equal(t, 1, r.Round())
	first, second := r.Scores()
	assert.Zero(t, first)
	assert.Zero(t, second)
	assert.False(t, r.MatchOver())
	assert.False(t, r.Closed())

	role, ok := r.RoleOf("conn-a")
	require.True(t, ok)
	assert.Equal(t, RoleFirst, role)
	role, ok = r.RoleOf("conn-b")
	require.True(t, ok)
	assert.Equal(t, RoleSecond, role)
	_, ok = r.RoleOf("stranger")
	assert.False(t, ok)

	assert.Equal(t, "Alice", r.Nickname(RoleFirst))
	assert.Equal(t, "conn-b", r.ConnID(RoleSecond))
}

func TestRoom_SubmitMove_LockIn(t *testing.T) {
	_, r := newTestRoom(t)

	disp, from, _ := r.SubmitMove("conn-a", outcome.MoveRock)
	assert.Equal(t, SubmitLocked, disp)
	assert.Equal(t, RoleFirst, from)

	// Re-submission before the opponent answers is dropped, not overwritten.
	disp, _, _ = r.SubmitMove("conn-a", outcome.MovePaper)
	assert.Equal(t, SubmitDropped, disp)

	disp, _, result := r.SubmitMove("conn-b", outcome.MoveScissors)
	assert.Equal(t, SubmitResolved, disp)
	assert.Equal(t, outcome.MoveRock, result.FirstMove, "first submission stayed locked in")
	assert.Equal(t, outcome.FirstWins, result.Verdict)
}

func TestRoom_SubmitMove_Resolution(t *testing.T) {
	_, r := newTestRoom(t)

	r.SubmitMove("conn-a", outcome.MoveRock)
	disp, _, result := r.SubmitMove("conn-b", outcome.MoveScissors)

	require.Equal(t, SubmitResolved, disp)
	assert.Equal(t, 1, result.Round)
	assert.Equal(t, 1, result.ScoreFirst)
	assert.Equal(t, 0, result.ScoreSecond, "exactly one side's score moves")
	assert.False(t, result.MatchOver)

	assert.Equal(t, 2, r.Round(), "round advances after resolution")
	first, second := r.Scores()
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestRoom_SubmitMove_DrawKeepsScores(t *testing.T) {
	_, r := newTestRoom(t)

	r.SubmitMove("conn-a", outcome.MovePaper)
	_, _, result := r.SubmitMove("conn-b", outcome.MovePaper)

	assert.Equal(t, outcome.Draw, result.Verdict)
	assert.Zero(t, result.ScoreFirst)
	assert.Zero(t, result.ScoreSecond)
	assert.Equal(t, 2, r.Round())
}

func TestRoom_MatchCompletesAtThreshold(t *testing.T) {
	_, r := newTestRoom(t)

	r.SubmitMove("conn-a", outcome.MoveRock)
	_, _, result := r.SubmitMove("conn-b", outcome.MoveScissors)
	assert.False(t, result.MatchOver, "1-0 is not over at threshold 2")

	r.SubmitMove("conn-a", outcome.MoveRock)
	_, _, result = r.SubmitMove("conn-b", outcome.MoveScissors)
	require.True(t, result.MatchOver, "2-0 flips the match over")
	assert.Equal(t, outcome.FirstWins, result.MatchWinner)

	assert.True(t, r.MatchOver())
	winner, ok := r.Winner()
	require.True(t, ok)
	assert.Equal(t, RoleFirst, winner)

	// Moves after the match is decided are dropped.
	disp, _, _ := r.SubmitMove("conn-b", outcome.MoveRock)
	assert.Equal(t, SubmitDropped, disp)
}

func TestRoom_SubmitMove_StrangerDropped(t *testing.T) {
	_, r := newTestRoom(t)
	disp, _, _ := r.SubmitMove("intruder", outcome.MoveRock)
	assert.Equal(t, SubmitDropped, disp)
}

func TestRoom_RequestRematch(t *testing.T) {
	_, r := newTestRoom(t)

	// Not over yet: dropped.
	disp, _ := r.RequestRematch("conn-a")
	assert.Equal(t, RematchDropped, disp)

	playToWin(t, r, "conn-a", "conn-b")

	disp, from := r.RequestRematch("conn-a")
	assert.Equal(t, RematchNoted, disp)
	assert.Equal(t, RoleFirst, from)

	// Duplicate request from the same side is dropped.
	disp, _ = r.RequestRematch("conn-a")
	assert.Equal(t, RematchDropped, disp)
	assert.True(t, r.MatchOver(), "one-sided request leaves the match over")

	disp, from = r.RequestRematch("conn-b")
	assert.Equal(t, RematchAgreed, disp)
	assert.Equal(t, RoleSecond, from)
}

func TestRegistry_ResetForRematch(t *testing.T) {
	reg, r := newTestRoom(t)
	playToWin(t, r, "conn-a", "conn-b")
	id := r.ID()

	reg.ResetForRematch(r)

	assert.Equal(t, id, r.ID(), "identity survives the reset")
	assert.Equal(t, 1, r.Round())
	first, second := r.Scores()
	assert.Zero(t, first)
	assert.Zero(t, second)
	assert.False(t, r.MatchOver())

	got, ok := reg.ByConn("conn-a")
	require.True(t, ok, "index entries survive the reset")
	assert.Same(t, r, got)

	// A full match plays cleanly after the reset.
	disp, _, _ := r.SubmitMove("conn-b", outcome.MoveRock)
	assert.Equal(t, SubmitLocked, disp)
}

func TestRegistry_CreateAndLookup(t *testing.T) {
	reg, r := newTestRoom(t)

	got, ok := reg.ByConn("conn-a")
	require.True(t, ok)
	assert.Same(t, r, got)

	got, ok = reg.ByID(r.ID())
	require.True(t, ok)
	assert.Same(t, r, got)

	assert.True(t, reg.HasConn("conn-b"))
	assert.False(t, reg.HasConn("stranger"))
	assert.Equal(t, 1, reg.RoomCount())
}

func TestRegistry_Destroy(t *testing.T) {
	reg, r := newTestRoom(t)

	reg.Destroy(r)

	assert.True(t, r.Closed())
	assert.False(t, reg.HasConn("conn-a"))
	assert.False(t, reg.HasConn("conn-b"))
	assert.Zero(t, reg.RoomCount())

	// Idempotent.
	reg.Destroy(r)
	assert.Zero(t, reg.RoomCount())

	// Operations against a destroyed room are dropped.
	disp, _, _ := r.SubmitMove("conn-a", outcome.MoveRock)
	assert.Equal(t, SubmitDropped, disp)
}

func TestRegistry_DestroyDoesNotEvictSuccessor(t *testing.T) {
	reg, r := newTestRoom(t)
	reg.Destroy(r)

	// The same connections pair again into a new room; destroying the old
	// room a second time must not remove the new index entries.
	r2 := reg.Create("conn-a", "Alice", "conn-b", "Bob", 2)
	reg.Destroy(r)

	got, ok := reg.ByConn("conn-a")
	require.True(t, ok)
	assert.Same(t, r2, got)
}

type fakeTimer struct {
	stopped bool
}

func (f *fakeTimer) Stop() { f.stopped = true }

func TestRoom_CloseStopsTrackedTimers(t *testing.T) {
	_, r := newTestRoom(t)

	ft := &fakeTimer{}
	r.TrackTimer(ft)
	assert.False(t, ft.stopped)

	require.True(t, r.Close())
	assert.True(t, ft.stopped)

	assert.False(t, r.Close(), "second close reports already closed")

	// Tracking after close stops immediately.
	late := &fakeTimer{}
	r.TrackTimer(late)
	assert.True(t, late.stopped)
}

// playToWin drives first to a 2-0 victory.
func playToWin(t *testing.T, r *Room, first, second string) {
	t.Helper()
	for i := 0; i < 2; i++ {
		_, _, _ = r.SubmitMove(first, outcome.MoveRock)
		disp, _, _ := r.SubmitMove(second, outcome.MoveScissors)
		require.Equal(t, SubmitResolved, disp)
	}
	require.True(t, r.MatchOver())
}
