// Package room hosts the per-room actor: one goroutine owns one game.Room
// and serializes every intent against it, so start-guard checks and settings
// updates can never race.
package room

import (
	"context"
	"errors"

	"github.com/riftslide/backend/internal/game"
	"github.com/riftslide/backend/internal/logger"
	"github.com/riftslide/backend/internal/types"
)

type Msg interface{ isRoomMsg() }

// Join seats a connection in the room. Reply carries nil and the actor
// starts delivering events on Outbox, or one of the surfaced errors
// (game.ErrRoomStarted, game.ErrRoomFull).
type Join struct {
	ConnID string
	Name   string
	Outbox chan types.ServerMessage
	Reply  chan error
}

func (Join) isRoomMsg() {}

// FromClient carries a validated-shape intent into the actor.
type FromClient struct {
	Cmd game.Command
}

func (FromClient) isRoomMsg() {}

type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetState reflects internal state without data races; test-only.
type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type View struct {
	State      game.Room
	NumMembers int
}

type Room struct {
	inbox    chan Msg
	state    game.Room
	members  map[string]chan types.ServerMessage
	onRemove func(code string)
	ctx      context.Context
	cancel   context.CancelFunc
}

// New spins up the actor with the creator already seated as host and
// receiving events on hostOutbox. onRemove is invoked once, after the actor
// has decided the room is dead (emptied or dissolved).
func New(parent context.Context, state game.Room, hostConnID string, hostOutbox chan types.ServerMessage, onRemove func(code string)) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:    make(chan Msg, 64),
		state:    state,
		members:  map[string]chan types.ServerMessage{hostConnID: hostOutbox},
		onRemove: onRemove,
		ctx:      ctx,
		cancel:   cancel,
	}

	go r.loop()
	return r
}

// Send queues a message for the actor. It never blocks on a dead room; the
// return value reports whether the message was accepted.
func (r *Room) Send(m Msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Done is closed once the actor has stopped; senders waiting on a reply
// select on it to avoid hanging on a room that died mid-request.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) ID() string { return r.state.ID }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case FromClient:
				events, next, err := game.Apply(r.state, msg.Cmd)
				if err != nil {
					// authorization and stale-state violations are
					// dropped on purpose; nothing here is surfaced
					break
				}
				r.state = next
				r.fanOut(events, msg.Cmd.ConnID)

			case Leave:
				r.handleLeave(msg.ConnID)

			case GetState:
				msg.Reply <- View{State: r.state.Snapshot(), NumMembers: len(r.members)}

			case Shutdown:
				r.die()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	events, next, err := game.Apply(r.state, game.Command{
		Type:   game.CmdJoin,
		ConnID: msg.ConnID,
		Name:   msg.Name,
	})
	if err != nil {
		msg.Reply <- err
		return
	}

	r.state = next
	r.members[msg.ConnID] = msg.Outbox
	msg.Reply <- nil
	r.fanOut(events, msg.ConnID)
	logger.Log.Infow("player joined", "room", r.state.ID, "conn", msg.ConnID, "players", len(r.state.Players))
}

func (r *Room) handleLeave(connID string) {
	events, next, err := game.Apply(r.state, game.Command{Type: game.CmdLeave, ConnID: connID})
	if errors.Is(err, game.ErrUnknownPlayer) {
		return
	}

	r.state = next
	delete(r.members, connID)
	r.fanOut(events, connID)
	logger.Log.Infow("player left", "room", r.state.ID, "conn", connID, "players", len(r.state.Players))

	if len(r.state.Players) == 0 {
		r.die()
		return
	}
	for _, e := range events {
		if e.Type == game.EvtRoomDissolved {
			// host departure ends the room for everyone
			r.die()
			return
		}
	}
}

func (r *Room) die() {
	for id := range r.members {
		delete(r.members, id)
	}
	r.cancel()
	if r.onRemove != nil {
		go r.onRemove(r.state.ID)
	}
	logger.Log.Infow("room closed", "room", r.state.ID)
}

// fanOut translates coordinator events to wire messages and delivers them to
// the audience each event names, relative to the acting connection.
func (r *Room) fanOut(events []game.Event, actor string) {
	for _, e := range events {
		wire := r.toWire(e)
		switch e.Audience {
		case game.ToCaller:
			if out, ok := r.members[actor]; ok {
				r.send(actor, out, wire)
			}
		case game.ToOthers:
			for id, out := range r.members {
				if id != actor {
					r.send(id, out, wire)
				}
			}
		case game.ToAll:
			for id, out := range r.members {
				r.send(id, out, wire)
			}
		}
	}
}

// send is non-blocking: a member whose outbox is full stops receiving room
// events; its roster seat is reclaimed when the connection closes.
func (r *Room) send(id string, out chan types.ServerMessage, msg types.ServerMessage) {
	select {
	case out <- msg:
	default:
		delete(r.members, id)
		logger.Log.Warnw("dropping slow client", "room", r.state.ID, "conn", id)
	}
}

func (r *Room) toWire(e game.Event) types.ServerMessage {
	switch e.Type {
	case game.EvtJoined:
		snap := r.state.Snapshot()
		return types.ServerMessage{Type: types.EventJoinedRoom, Room: &snap}
	case game.EvtRoomUpdate:
		snap := r.state.Snapshot()
		return types.ServerMessage{Type: types.EventRoomUpdate, Room: &snap}
	case game.EvtGameStarted:
		snap := r.state.Snapshot()
		return types.ServerMessage{Type: types.EventGameStarted, Room: &snap}
	case game.EvtProgress:
		return types.ServerMessage{
			Type:         types.EventOpponentProgress,
			ConnectionID: e.ConnID,
			Progress:     e.Progress,
			Score:        e.Score,
		}
	case game.EvtFinished:
		return types.ServerMessage{
			Type:         types.EventPlayerFinished,
			ConnectionID: e.ConnID,
			FinishTime:   e.FinishTime,
			Score:        e.Score,
		}
	case game.EvtGameOver:
		return types.ServerMessage{
			Type:     types.EventGameOver,
			Players:  game.ClonePlayers(e.Players),
			WinnerID: e.WinnerID,
		}
	case game.EvtPlayerLeft:
		return types.ServerMessage{Type: types.EventPlayerLeft, ConnectionID: e.ConnID}
	case game.EvtRoomDissolved:
		return types.ServerMessage{Type: types.EventRoomDissolved}
	case game.EvtMatchInterrupted:
		return types.ServerMessage{Type: types.EventMatchInterrupted}
	default:
		return types.ServerMessage{}
	}
}
