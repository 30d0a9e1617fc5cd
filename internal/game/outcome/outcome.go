// Package outcome resolves rock-paper-scissors rounds and match completion.
// It is pure: no state, no side effects, no failure modes.
package outcome

// Move is one of the three legal hand shapes.
type Move int

const (
	MoveRock Move = iota
	MovePaper
	MoveScissors
)

// String returns the wire name of the move.
func (m Move) String() string {
	switch m {
	case MoveRock:
		return "rock"
	case MovePaper:
		return "paper"
	case MoveScissors:
		return "scissors"
	default:
		return "unknown"
	}
}

// ParseMove maps a wire string onto a Move.
//
// Postcondition: Returns (move, true) for "rock", "paper", "scissors";
// (0, false) for everything else. No other value is ever accepted.
func ParseMove(s string) (Move, bool) {
	switch s {
	case "rock":
		return MoveRock, true
	case "paper":
		return MovePaper, true
	case "scissors":
		return MoveScissors, true
	default:
		return 0, false
	}
}

// Result is the resolution of a single round from the perspective of the
// two fixed participant positions.
type Result int

const (
	Draw Result = iota
	FirstWins
	SecondWins
)

// String returns the wire name of the result.
func (r Result) String() string {
	switch r {
	case FirstWins:
		return "player1"
	case SecondWins:
		return "player2"
	default:
		return "draw"
	}
}

// beats holds the fixed dominance relation: key beats value.
var beats = map[Move]Move{
	MoveRock:     MoveScissors,
	MoveScissors: MovePaper,
	MovePaper:    MoveRock,
}

// Resolve maps two simultaneous moves to a round result.
// Total over the 3x3 move space and symmetric under swapping arguments:
// swapping inputs swaps FirstWins/SecondWins and preserves Draw.
func Resolve(first, second Move) Result {
	if first == second {
		return Draw
	}
	if beats[first] == second {
		return FirstWins
	}
	return SecondWins
}

// MatchWinner reports whether either side's score has reached the win
// threshold. Callers only ever increment one side's score per round, so at
// most one side can qualify; if both somehow did, First takes precedence.
//
// Precondition: threshold > 0; scores are non-negative.
func MatchWinner(first, second, threshold int) (Result, bool) {
	switch {
	case first >= threshold:
		return FirstWins, true
	case second >= threshold:
		return SecondWins, true
	default:
		return Draw, false
	}
}
