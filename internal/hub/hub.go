// Package hub is the session store: one actor owning the table of live
// rooms. Room codes are allocated here so collision checks and lookups are
// serialized with creation.
package hub

import (
	"context"
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"strings"

	"github.com/riftslide/backend/internal/game"
	"github.com/riftslide/backend/internal/logger"
	"github.com/riftslide/backend/internal/metrics"
	"github.com/riftslide/backend/internal/room"
	"github.com/riftslide/backend/internal/types"
)

const codeLength = 6

type HubMsg interface{ isHubMsg() }

// CreateRoom allocates a fresh code and spins up a room actor with the
// caller seated as host.
type CreateRoom struct {
	ConnID string
	Name   string
	Outbox chan types.ServerMessage
	Reply  chan CreateReply
}

type CreateReply struct {
	Room  *room.Room
	State game.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	metrics *metrics.Metrics
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, m *metrics.Metrics) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*room.Room),
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

// Send queues a message without blocking once the hub is shut down.
func (h *Hub) Send(m HubMsg) {
	select {
	case h.inbox <- m:
	case <-h.ctx.Done():
	}
}

// Done is closed once the hub has shut down; callers waiting on a reply
// select on it so a dropped message cannot strand them.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code := h.freshCode()
				state := game.NewRoom(code, msg.ConnID, msg.Name, mrand.Int63())
				rm := room.New(h.ctx, state, msg.ConnID, msg.Outbox, func(code string) {
					h.Send(RemoveRoom{Code: code})
				})
				h.rooms[code] = rm
				h.metrics.RoomOpened()
				logger.Log.Infow("room created", "room", code, "host", msg.ConnID)
				msg.Reply <- CreateReply{Room: rm, State: state}

			case GetRoom:
				msg.Reply <- h.rooms[normalize(msg.Code)] // may be nil

			case RemoveRoom:
				if _, ok := h.rooms[msg.Code]; ok {
					delete(h.rooms, msg.Code)
					h.metrics.RoomClosed()
				}

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Send(room.Shutdown{})
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

// freshCode draws short human-typable codes until one misses the live table.
func (h *Hub) freshCode() string {
	for {
		code, err := generateCode()
		if err != nil {
			// keep creation moving even if crypto/rand misbehaves
			code = fallbackCode()
		}
		if _, taken := h.rooms[code]; !taken {
			return code
		}
	}
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}

func fallbackCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeCharset[mrand.Intn(len(codeCharset))]
	}
	return string(code)
}

// normalize makes lookups case-insensitive; codes are stored uppercased.
func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
