package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riftslide/backend/internal/game"
	"github.com/riftslide/backend/internal/types"
)

// recv pulls one event with a timeout so tests never hang.
func recv(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) types.ServerMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(within):
		t.Fatalf("timed out waiting for event")
		return types.ServerMessage{} // unreachable
	}
}

// waitFor skips events until one of the wanted type arrives.
func waitFor(t *testing.T, ch <-chan types.ServerMessage, eventType string) types.ServerMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if msg.Type == eventType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", eventType)
			return types.ServerMessage{} // unreachable
		}
	}
}

func recvNothing(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("expected no event within %v, got %+v", within, msg)
	case <-time.After(within):
	}
}

func newTestRoom(t *testing.T) (*Room, chan types.ServerMessage, chan string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hostOut := make(chan types.ServerMessage, 16)
	removed := make(chan string, 1)
	state := game.NewRoom("AB12CD", "host", "Hana", 42)
	r := New(ctx, state, "host", hostOut, func(code string) { removed <- code })
	return r, hostOut, removed
}

func join(t *testing.T, r *Room, connID string) (chan types.ServerMessage, error) {
	t.Helper()
	out := make(chan types.ServerMessage, 16)
	reply := make(chan error, 1)
	require.True(t, r.Send(Join{ConnID: connID, Name: connID, Outbox: out, Reply: reply}))
	select {
	case err := <-reply:
		return out, err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for join reply")
		return nil, nil // unreachable
	}
}

func view(t *testing.T, r *Room) View {
	t.Helper()
	reply := make(chan View, 1)
	require.True(t, r.Send(GetState{Reply: reply}))
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for view")
		return View{} // unreachable
	}
}

func TestRoom_JoinBroadcastsRoster(t *testing.T) {
	r, hostOut, _ := newTestRoom(t)

	guestOut, err := join(t, r, "guest")
	require.NoError(t, err)

	joined := recv(t, guestOut, time.Second)
	require.Equal(t, types.EventJoinedRoom, joined.Type)
	require.NotNil(t, joined.Room)
	require.Len(t, joined.Room.Players, 2)
	require.False(t, joined.Room.Players["guest"].IsReady)

	update := recv(t, hostOut, time.Second)
	require.Equal(t, types.EventRoomUpdate, update.Type)
	require.Len(t, update.Room.Players, 2)
}

func TestRoom_FullMatch(t *testing.T) {
	r, hostOut, _ := newTestRoom(t)

	guestOut, err := join(t, r, "guest")
	require.NoError(t, err)

	r.Send(FromClient{Cmd: game.Command{Type: game.CmdToggleReady, ConnID: "guest"}})
	update := waitFor(t, hostOut, types.EventRoomUpdate)
	for update.Room.Players["guest"].IsReady == false {
		update = waitFor(t, hostOut, types.EventRoomUpdate)
	}

	r.Send(FromClient{Cmd: game.Command{Type: game.CmdStartGame, ConnID: "host"}})
	startedHost := waitFor(t, hostOut, types.EventGameStarted)
	startedGuest := waitFor(t, guestOut, types.EventGameStarted)
	require.Equal(t, game.StatusPlaying, startedHost.Room.Status)
	require.Equal(t, startedHost.Room.Seed, startedGuest.Room.Seed,
		"both participants must shuffle from the same seed")
	for _, p := range startedHost.Room.Players {
		require.Zero(t, p.Score)
		require.False(t, p.Finished)
	}

	// progress goes to others only
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdUpdateProgress, ConnID: "guest", Progress: 50, Score: 4000}})
	prog := waitFor(t, hostOut, types.EventOpponentProgress)
	require.Equal(t, "guest", prog.ConnectionID)
	require.Equal(t, 50, prog.Progress)
	require.Equal(t, 4000, prog.Score)
	recvNothing(t, guestOut, 100*time.Millisecond)

	// first finisher notifies everyone, room keeps playing
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdPlayerFinished, ConnID: "guest", FinishTime: 42, Score: 7000}})
	fin := waitFor(t, hostOut, types.EventPlayerFinished)
	require.Equal(t, "guest", fin.ConnectionID)
	require.Equal(t, 42, fin.FinishTime)
	waitFor(t, guestOut, types.EventPlayerFinished)
	require.Equal(t, game.StatusPlaying, view(t, r).State.Status)

	// last finisher ends the round; TIME_ATTACK ranks by finish time
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdPlayerFinished, ConnID: "host", FinishTime: 55, Score: 9000}})
	overHost := waitFor(t, hostOut, types.EventGameOver)
	overGuest := waitFor(t, guestOut, types.EventGameOver)
	require.Equal(t, "guest", overHost.WinnerID)
	require.Equal(t, "guest", overGuest.WinnerID)
	require.Len(t, overHost.Players, 2)
	require.Equal(t, game.StatusFinished, view(t, r).State.Status)
}

func TestRoom_JoinRejectedWhenPlaying(t *testing.T) {
	r, _, _ := newTestRoom(t)

	_, err := join(t, r, "guest")
	require.NoError(t, err)
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdToggleReady, ConnID: "guest"}})
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdStartGame, ConnID: "host"}})
	require.Eventually(t, func() bool {
		return view(t, r).State.Status == game.StatusPlaying
	}, time.Second, 10*time.Millisecond)

	_, err = join(t, r, "late")
	require.ErrorIs(t, err, game.ErrRoomStarted)
	require.Len(t, view(t, r).State.Players, 2)
}

func TestRoom_JoinRejectedWhenFull(t *testing.T) {
	r, _, _ := newTestRoom(t)

	for i := 0; i < game.MaxPlayers-1; i++ {
		_, err := join(t, r, string(rune('a'+i)))
		require.NoError(t, err)
	}
	_, err := join(t, r, "overflow")
	require.ErrorIs(t, err, game.ErrRoomFull)
}

func TestRoom_SilentlyDropsUnauthorizedIntents(t *testing.T) {
	r, hostOut, _ := newTestRoom(t)

	guestOut, err := join(t, r, "guest")
	require.NoError(t, err)
	recv(t, guestOut, time.Second) // joined_room
	recv(t, guestOut, time.Second) // room_update
	recv(t, hostOut, time.Second)  // room_update

	// a guest cannot start; the host cannot ready; strangers do nothing
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdStartGame, ConnID: "guest"}})
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdToggleReady, ConnID: "host"}})
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdToggleReady, ConnID: "stranger"}})

	recvNothing(t, hostOut, 150*time.Millisecond)
	recvNothing(t, guestOut, 150*time.Millisecond)
	require.Equal(t, game.StatusLobby, view(t, r).State.Status)
}

func TestRoom_HostLeaveDissolvesRoom(t *testing.T) {
	r, _, removed := newTestRoom(t)

	guestOut, err := join(t, r, "guest")
	require.NoError(t, err)

	r.Send(Leave{ConnID: "host"})

	left := waitFor(t, guestOut, types.EventPlayerLeft)
	require.Equal(t, "host", left.ConnectionID)
	waitFor(t, guestOut, types.EventRoomDissolved)

	select {
	case code := <-removed:
		require.Equal(t, "AB12CD", code)
	case <-time.After(time.Second):
		t.Fatal("room was not removed after host left")
	}

	// the actor is gone; further sends are rejected
	require.Eventually(t, func() bool {
		return !r.Send(Leave{ConnID: "guest"})
	}, time.Second, 10*time.Millisecond)
}

func TestRoom_LastLeaverDestroysRoom(t *testing.T) {
	r, _, removed := newTestRoom(t)

	r.Send(Leave{ConnID: "host"})

	select {
	case code := <-removed:
		require.Equal(t, "AB12CD", code)
	case <-time.After(time.Second):
		t.Fatal("empty room was not removed")
	}
}

func TestRoom_GuestLeaveDuringPlayNotifiesInterruption(t *testing.T) {
	r, hostOut, _ := newTestRoom(t)

	_, err := join(t, r, "guest")
	require.NoError(t, err)
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdToggleReady, ConnID: "guest"}})
	r.Send(FromClient{Cmd: game.Command{Type: game.CmdStartGame, ConnID: "host"}})
	waitFor(t, hostOut, types.EventGameStarted)

	r.Send(Leave{ConnID: "guest"})
	waitFor(t, hostOut, types.EventPlayerLeft)
	waitFor(t, hostOut, types.EventMatchInterrupted)

	// the policy is advisory: the room itself stays PLAYING
	require.Equal(t, game.StatusPlaying, view(t, r).State.Status)
}

func TestRoom_SlowMemberIsDropped(t *testing.T) {
	r, hostOut, _ := newTestRoom(t)

	// a guest with no outbox capacity cannot absorb its join events
	out := make(chan types.ServerMessage)
	reply := make(chan error, 1)
	require.True(t, r.Send(Join{ConnID: "slow", Name: "slow", Outbox: out, Reply: reply}))
	require.NoError(t, <-reply)

	recv(t, hostOut, time.Second) // room_update still reaches healthy members

	require.Eventually(t, func() bool {
		return view(t, r).NumMembers == 1
	}, time.Second, 10*time.Millisecond)
}
