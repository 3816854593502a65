// Package ws is the transport edge: one full-duplex event channel per
// connection, multiplexed into rooms by the intents the client sends.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	mrand "math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/riftslide/backend/internal/game"
	"github.com/riftslide/backend/internal/hub"
	"github.com/riftslide/backend/internal/logger"
	"github.com/riftslide/backend/internal/metrics"
	"github.com/riftslide/backend/internal/room"
	"github.com/riftslide/backend/internal/types"
)

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		m.ClientConnected()
		defer m.ClientDisconnected()
		logger.Log.Infow("client connected", "conn", connID)

		c := &client{
			connID: connID,
			hub:    h,
			outbox: make(chan types.ServerMessage, 16),
			joined: make(map[string]*room.Room),
		}

		// transport-level disconnect: every room still holding this
		// connection sees a Leave
		defer func() {
			for _, rm := range c.joined {
				rm.Send(room.Leave{ConnID: connID})
			}
			logger.Log.Infow("client disconnected", "conn", connID)
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go writer(writeCtx, conn, c.outbox)

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				c.reply(types.Error("bad json"))
				continue
			}
			m.Intent(intentLabel(cm.Type))
			c.dispatch(cm)
		}
	}
}

// intentLabel keeps the intents counter's label set bounded: client-invented
// types would otherwise mint a new label child each.
func intentLabel(t string) string {
	switch t {
	case types.IntentCreateRoom, types.IntentJoinRoom, types.IntentToggleReady,
		types.IntentUpdateSettings, types.IntentStartGame,
		types.IntentUpdateProgress, types.IntentPlayerFinished:
		return t
	}
	return "unknown"
}

func writer(ctx context.Context, conn *websocket.Conn, outbox <-chan types.ServerMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-outbox:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			_ = conn.Write(wctx, websocket.MessageText, payload)
			cancel()
		}
	}
}

// client is the per-connection routing state; only the reader goroutine
// touches it.
type client struct {
	connID string
	hub    *hub.Hub
	outbox chan types.ServerMessage
	joined map[string]*room.Room
}

func (c *client) dispatch(cm types.ClientMessage) {
	switch cm.Type {
	case types.IntentCreateRoom:
		c.createRoom(cm)

	case types.IntentJoinRoom:
		c.joinRoom(cm)

	case types.IntentToggleReady:
		c.forward(cm.RoomID, game.Command{Type: game.CmdToggleReady, ConnID: c.connID})

	case types.IntentUpdateSettings:
		c.forward(cm.RoomID, game.Command{
			Type:       game.CmdUpdateSettings,
			ConnID:     c.connID,
			Settings:   cm.Settings,
			ChampionID: cm.ChampionID,
			SkinID:     cm.SkinID,
			Seed:       mrand.Int63(),
		})

	case types.IntentStartGame:
		c.forward(cm.RoomID, game.Command{Type: game.CmdStartGame, ConnID: c.connID})

	case types.IntentUpdateProgress:
		c.forward(cm.RoomID, game.Command{
			Type:     game.CmdUpdateProgress,
			ConnID:   c.connID,
			Progress: cm.Progress,
			Score:    cm.Score,
		})

	case types.IntentPlayerFinished:
		c.forward(cm.RoomID, game.Command{
			Type:       game.CmdPlayerFinished,
			ConnID:     c.connID,
			FinishTime: cm.FinishTime,
			Score:      cm.Score,
		})

	default:
		c.reply(types.Error("unknown type"))
	}
}

func (c *client) createRoom(cm types.ClientMessage) {
	reply := make(chan hub.CreateReply, 1)
	c.hub.Send(hub.CreateRoom{
		ConnID: c.connID,
		Name:   cm.DisplayName,
		Outbox: c.outbox,
		Reply:  reply,
	})
	var rep hub.CreateReply
	select {
	case rep = <-reply:
	case <-c.hub.Done():
		c.reply(types.Error("server shutting down"))
		return
	}
	c.joined[rep.State.ID] = rep.Room

	snap := rep.State.Snapshot()
	c.reply(types.ServerMessage{Type: types.EventRoomCreated, Room: &snap})
}

func (c *client) joinRoom(cm types.ClientMessage) {
	rm := c.lookup(cm.RoomID)
	if rm == nil {
		c.reply(types.Error("room not found"))
		return
	}

	replyErr := make(chan error, 1)
	if !rm.Send(room.Join{ConnID: c.connID, Name: cm.DisplayName, Outbox: c.outbox, Reply: replyErr}) {
		c.reply(types.Error("room not found"))
		return
	}

	var err error
	select {
	case err = <-replyErr:
	case <-rm.Done():
		err = game.ErrRoomNotFound
	}

	switch {
	case err == nil:
		c.joined[rm.ID()] = rm
	case errors.Is(err, game.ErrRoomStarted):
		c.reply(types.Error("game already started"))
	case errors.Is(err, game.ErrRoomFull):
		c.reply(types.Error("room is full (max 8 players)"))
	default:
		c.reply(types.Error("room not found"))
	}
}

// forward routes an intent to a room this connection has joined. Intents
// for rooms the connection never entered (or already left) are stale by
// definition and dropped without a reply.
func (c *client) forward(roomID string, cmd game.Command) {
	rm, ok := c.joined[normalize(roomID)]
	if !ok {
		return
	}
	if !rm.Send(room.FromClient{Cmd: cmd}) {
		delete(c.joined, normalize(roomID))
	}
}

func (c *client) lookup(code string) *room.Room {
	reply := make(chan *room.Room, 1)
	c.hub.Send(hub.GetRoom{Code: code, Reply: reply})
	select {
	case rm := <-reply:
		return rm
	case <-c.hub.Done():
		return nil
	}
}

// reply queues an event for this connection only.
func (c *client) reply(msg types.ServerMessage) {
	select {
	case c.outbox <- msg:
	default:
	}
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
