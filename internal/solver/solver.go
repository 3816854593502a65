// Package solver computes advisory next-move hints for sliding-tile boards
// using bounded weighted A*. Hints are directionally useful, not optimal:
// on larger boards the heuristic weight and expansion cap trade optimality
// for latency.
package solver

import (
	"container/heap"
	"context"
	"strconv"
	"strings"
)

const (
	weightSmall = 1.2
	weightLarge = 5.0 // gridSize >= 4

	maxExpansionsSmall = 15000
	maxExpansionsLarge = 30000 // gridSize >= 5

	cancelPollInterval = 256
)

type node struct {
	tiles     []int
	emptyIdx  int
	g         int
	h         int
	f         float64
	firstMove int // -1 until the first step away from the root
}

// NextHintMove returns the index of the tile to slide next, or ok=false when
// the board is already solved. On cap exhaustion it falls back to the first
// move along the lowest-heuristic path seen so far.
func NextHintMove(tiles []int, size int) (int, bool) {
	return nextHintMove(context.Background(), tiles, size)
}

// nextHintMove is the cancellable core. A cancelled context returns the
// best-so-far move, same as cap exhaustion.
func nextHintMove(ctx context.Context, tiles []int, size int) (int, bool) {
	solved := true
	for i, v := range tiles {
		if v != i {
			solved = false
			break
		}
	}
	if solved {
		return 0, false
	}

	weight := weightSmall
	if size >= 4 {
		weight = weightLarge
	}
	maxExpansions := maxExpansionsSmall
	if size >= 5 {
		maxExpansions = maxExpansionsLarge
	}

	start := &node{
		tiles:     append([]int(nil), tiles...),
		emptyIdx:  indexOf(tiles, len(tiles)-1),
		h:         manhattanSum(tiles, size),
		firstMove: -1,
	}
	start.f = float64(start.h) * weight

	open := &nodeHeap{start}
	visited := make(map[string]struct{})
	best := start
	expansions := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)

		if current.h < best.h {
			best = current
		}
		if current.h == 0 {
			return current.firstMove, true
		}

		key := encode(current.tiles)
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		expansions++
		if expansions > maxExpansions {
			return bestFallback(best)
		}
		if expansions%cancelPollInterval == 0 {
			select {
			case <-ctx.Done():
				return bestFallback(best)
			default:
			}
		}

		row, col := current.emptyIdx/size, current.emptyIdx%size
		moves := make([]int, 0, 4)
		if row > 0 {
			moves = append(moves, current.emptyIdx-size)
		}
		if row < size-1 {
			moves = append(moves, current.emptyIdx+size)
		}
		if col > 0 {
			moves = append(moves, current.emptyIdx-1)
		}
		if col < size-1 {
			moves = append(moves, current.emptyIdx+1)
		}

		for _, moveIdx := range moves {
			next := append([]int(nil), current.tiles...)
			next[current.emptyIdx], next[moveIdx] = next[moveIdx], next[current.emptyIdx]
			if _, seen := visited[encode(next)]; seen {
				continue
			}

			first := current.firstMove
			if first == -1 {
				first = moveIdx
			}
			h := manhattanSum(next, size)
			g := current.g + 1
			heap.Push(open, &node{
				tiles:     next,
				emptyIdx:  moveIdx,
				g:         g,
				h:         h,
				f:         float64(g) + float64(h)*weight,
				firstMove: first,
			})
		}
	}

	return bestFallback(best)
}

func bestFallback(best *node) (int, bool) {
	if best.firstMove == -1 {
		return 0, false
	}
	return best.firstMove, true
}

// manhattanSum is the heuristic: total Manhattan distance of every tile from
// its goal position, excluding the empty slot.
func manhattanSum(tiles []int, size int) int {
	sum := 0
	blank := len(tiles) - 1
	for i, v := range tiles {
		if v == blank {
			continue
		}
		dr := i/size - v/size
		dc := i%size - v%size
		if dr < 0 {
			dr = -dr
		}
		if dc < 0 {
			dc = -dc
		}
		sum += dr + dc
	}
	return sum
}

func indexOf(tiles []int, value int) int {
	for i, v := range tiles {
		if v == value {
			return i
		}
	}
	return -1
}

func encode(tiles []int) string {
	var sb strings.Builder
	sb.Grow(len(tiles) * 3)
	for i, v := range tiles {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}
