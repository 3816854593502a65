package solver

import (
	"context"
	"testing"
	"time"

	"github.com/riftslide/backend/internal/puzzle"
	"github.com/stretchr/testify/require"
)

func TestSolvedBoardHasNoHint(t *testing.T) {
	tiles := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	_, ok := NextHintMove(tiles, 3)
	require.False(t, ok)
}

func TestOneMoveAwaySolvesInOneCall(t *testing.T) {
	// solved 3x3 with tiles 7 and 8(empty) swapped: sliding index 8 wins
	tiles := []int{0, 1, 2, 3, 4, 5, 6, 8, 7}
	move, ok := NextHintMove(tiles, 3)
	require.True(t, ok)
	require.Equal(t, 8, move)

	b := puzzle.NewBoard(3)
	b.SetTiles(tiles)
	require.NoError(t, b.ApplyMove(move))
	require.True(t, b.IsSolved())
}

func TestHintsSolveShuffledBoard(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		b := puzzle.NewBoard(3)
		b.ShuffleSeeded(seed)

		for i := 0; i < 400 && !b.IsSolved(); i++ {
			move, ok := NextHintMove(b.Tiles(), 3)
			require.True(t, ok, "seed %d: solver gave up on unsolved board", seed)
			require.NoError(t, b.ApplyMove(move), "seed %d: solver suggested illegal move %d", seed, move)
		}
		require.True(t, b.IsSolved(), "seed %d: hints did not reach the solved state", seed)
	}
}

func TestHintIsAlwaysLegal(t *testing.T) {
	b := puzzle.NewBoard(4)
	b.ShuffleSeeded(99)

	move, ok := NextHintMove(b.Tiles(), 4)
	require.True(t, ok)
	require.NoError(t, b.ApplyMove(move))
}

func TestLargeBoardReturnsWithinCap(t *testing.T) {
	b := puzzle.NewBoard(5)
	b.ShuffleSeeded(3)

	done := make(chan struct{})
	go func() {
		defer close(done)
		move, ok := NextHintMove(b.Tiles(), 5)
		if ok {
			require.NoError(t, b.ApplyMove(move))
		}
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("bounded search did not return in time")
	}
}

func TestWorkerDeliversNewestRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWorker(ctx)

	stale := puzzle.NewBoard(4)
	stale.ShuffleSeeded(11)
	w.Request(stale.Tiles(), 4)

	// supersede immediately with a board whose answer we know
	fresh := []int{0, 1, 2, 3, 4, 5, 6, 8, 7}
	w.Request(fresh, 3)

	var last Result
	deadline := time.After(30 * time.Second)
	for {
		select {
		case r := <-w.Results():
			last = r
			// the newest request's answer is tile index 8
			if r.OK && r.Move == 8 {
				return
			}
		case <-deadline:
			t.Fatalf("never received hint for newest request, last=%+v", last)
		}
	}
}

func TestWorkerSolvedBoardYieldsNoMove(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWorker(ctx)
	w.Request([]int{0, 1, 2, 3}, 2)

	select {
	case r := <-w.Results():
		require.False(t, r.OK)
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
	}
}
