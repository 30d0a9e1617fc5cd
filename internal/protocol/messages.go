// Package protocol defines the JSON wire messages exchanged with clients.
// Both directions use a {"type": ..., "data": ...} envelope.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound message types.
const (
	TypeJoinQueue      = "join_queue"
	TypePlayerChoice   = "player_choice"
	TypeRequestRematch = "request_rematch"
	TypeLeaveRoom      = "leave_room"
)

// Outbound message types.
const (
	TypeMatchFound           = "match_found"
	TypeStartRound           = "start_round"
	TypeOpponentLocked       = "opponent_locked"
	TypeRoundResult          = "round_result"
	TypeMatchResult          = "match_result"
	TypeOpponentWantsRematch = "opponent_wants_rematch"
	TypeRematchAccepted      = "rematch_accepted"
	TypeOpponentDisconnected = "opponent_disconnected"
)

// Envelope is the wire frame for inbound messages. Data stays raw so the
// dispatcher can decode per message type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeEnvelope parses an inbound frame.
//
// Postcondition: Returns an error for malformed JSON or an empty type;
// unknown types decode fine and are the dispatcher's problem.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope missing type")
	}
	return env, nil
}

// ChoicePayload is the data of a player_choice message.
type ChoicePayload struct {
	Choice string `json:"choice"`
}

// DecodeChoice parses the player_choice payload.
func DecodeChoice(data json.RawMessage) (ChoicePayload, error) {
	var p ChoicePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return ChoicePayload{}, fmt.Errorf("decoding choice: %w", err)
	}
	return p, nil
}

// Event is an outbound message ready to be marshalled and sent.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Encode marshals the event into its wire form.
func (e Event) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", e.Type, err)
	}
	return raw, nil
}

// Scores carries both running scores keyed by role.
type Scores struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// MatchFoundPayload is sent individually to each side on pairing.
type MatchFoundPayload struct {
	RoomID           string `json:"roomId"`
	PlayerRole       string `json:"playerRole"`
	PlayerNickname   string `json:"playerNickname"`
	OpponentNickname string `json:"opponentNickname"`
}

// StartRoundPayload announces a round beginning, with current scores.
type StartRoundPayload struct {
	Round  int    `json:"round"`
	Scores Scores `json:"scores"`
}

// RoundResultPayload reveals both moves and the round verdict.
// MatchWinner is empty until the match is decided.
type RoundResultPayload struct {
	Round         int    `json:"round"`
	Player1Choice string `json:"player1Choice"`
	Player2Choice string `json:"player2Choice"`
	RoundWinner   string `json:"roundWinner"`
	Scores        Scores `json:"scores"`
	MatchWinner   string `json:"matchWinner,omitempty"`
}

// MatchResultPayload summarizes a decided match.
type MatchResultPayload struct {
	Winner          string `json:"winner"`
	FinalScores     Scores `json:"finalScores"`
	Player1Nickname string `json:"player1Nickname"`
	Player2Nickname string `json:"player2Nickname"`
}

// MatchFound builds a role-specific match_found event.
func MatchFound(roomID, role, nickname, opponent string) Event {
	return Event{Type: TypeMatchFound, Data: MatchFoundPayload{
		RoomID:           roomID,
		PlayerRole:       role,
		PlayerNickname:   nickname,
		OpponentNickname: opponent,
	}}
}

// StartRound builds a start_round event.
func StartRound(round, player1Score, player2Score int) Event {
	return Event{Type: TypeStartRound, Data: StartRoundPayload{
		Round:  round,
		Scores: Scores{Player1: player1Score, Player2: player2Score},
	}}
}

// OpponentLocked builds the no-payload lock-in notification.
func OpponentLocked() Event {
	return Event{Type: TypeOpponentLocked}
}

// RoundResult builds a round_result event.
func RoundResult(p RoundResultPayload) Event {
	return Event{Type: TypeRoundResult, Data: p}
}

// MatchResult builds a match_result event.
func MatchResult(p MatchResultPayload) Event {
	return Event{Type: TypeMatchResult, Data: p}
}

// OpponentWantsRematch builds the one-sided rematch notification.
func OpponentWantsRematch() Event {
	return Event{Type: TypeOpponentWantsRematch}
}

// RematchAccepted builds the both-sides-agreed notification.
func RematchAccepted() Event {
	return Event{Type: TypeRematchAccepted}
}

// OpponentDisconnected builds the teardown notification for the survivor.
func OpponentDisconnected() Event {
	return Event{Type: TypeOpponentDisconnected}
}
