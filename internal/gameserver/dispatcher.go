// Package gameserver routes inbound client traffic to the match
// coordinator. It is the only place that interprets raw frames; everything
// it cannot interpret is dropped without a reply, because clients routinely
// send duplicate and late messages.
package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roshambo/internal/game/match"
	"github.com/cory-johannsen/roshambo/internal/game/outcome"
	"github.com/cory-johannsen/roshambo/internal/protocol"
)

// Dispatcher maps inbound message types onto coordinator operations.
type Dispatcher struct {
	coord  *match.Coordinator
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: coord and logger must be non-nil.
func NewDispatcher(coord *match.Coordinator, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{coord: coord, logger: logger}
}

// HandleMessage processes one raw frame from connID. Malformed payloads,
// unknown types and out-of-set choices are dropped silently.
func (d *Dispatcher) HandleMessage(connID string, raw []byte) {
	env, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		d.logger.Debug("dropping malformed frame",
			zap.String("conn", connID),
			zap.Error(err),
		)
		return
	}

	switch env.Type {
	case protocol.TypeJoinQueue:
		d.coord.Join(connID)

	case protocol.TypePlayerChoice:
		payload, err := protocol.DecodeChoice(env.Data)
		if err != nil {
			d.logger.Debug("dropping malformed choice",
				zap.String("conn", connID),
				zap.Error(err),
			)
			return
		}
		mv, ok := outcome.ParseMove(payload.Choice)
		if !ok {
			d.logger.Debug("dropping out-of-set choice",
				zap.String("conn", connID),
				zap.String("choice", payload.Choice),
			)
			return
		}
		d.coord.SubmitMove(connID, mv)

	case protocol.TypeRequestRematch:
		d.coord.RequestRematch(connID)

	case protocol.TypeLeaveRoom:
		d.coord.Leave(connID)

	default:
		d.logger.Debug("dropping unknown message type",
			zap.String("conn", connID),
			zap.String("type", env.Type),
		)
	}
}

// HandleDisconnect processes an abrupt close of connID: queue removal and,
// when the connection owned a room, teardown with opponent notification.
func (d *Dispatcher) HandleDisconnect(connID string) {
	d.coord.Disconnect(connID)
}
