package puzzle

import (
	"errors"
	"math/rand"
)

var ErrIllegalMove = errors.New("illegal move")

// Board is one player's N×N tile permutation. tiles[i] holds the tile at
// position i; the value size*size-1 is the empty slot. A Board is never
// shared between goroutines.
type Board struct {
	size  int
	tiles []int
	moves int
}

// NewBoard returns a solved board. size must be at least 2.
func NewBoard(size int) *Board {
	b := &Board{size: size, tiles: make([]int, size*size)}
	for i := range b.tiles {
		b.tiles[i] = i
	}
	return b
}

// Shuffle scrambles the board with an unseeded source (solo play).
func (b *Board) Shuffle() {
	b.shuffle(rand.Int)
}

// ShuffleSeeded scrambles the board deterministically: two boards of the
// same size given the same seed end up with identical permutations.
func (b *Board) ShuffleSeeded(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	b.shuffle(rng.Int)
}

// shuffle walks the empty slot through max(150, n²·15) random adjacent
// swaps, never immediately undoing the previous swap. Every step is a legal
// move, so the result is always reachable (parity preserving).
func (b *Board) shuffle(randInt func() int) {
	total := b.size * b.size
	for i := range b.tiles {
		b.tiles[i] = i
	}

	steps := total * 15
	if steps < 150 {
		steps = 150
	}

	empty := total - 1
	prev := -1
	for i := 0; i < steps; i++ {
		candidates := b.neighbors(empty)
		valid := candidates[:0]
		for _, idx := range candidates {
			if idx != prev {
				valid = append(valid, idx)
			}
		}
		next := valid[randInt()%len(valid)]
		b.tiles[empty], b.tiles[next] = b.tiles[next], b.tiles[empty]
		prev = empty
		empty = next
	}
	b.moves = 0
}

// ApplyMove slides the tile at index into the empty slot. Indices that are
// not orthogonally adjacent to the empty slot leave the board and the move
// count untouched and report ErrIllegalMove.
func (b *Board) ApplyMove(index int) error {
	if index < 0 || index >= len(b.tiles) {
		return ErrIllegalMove
	}
	empty := b.EmptyIndex()
	if manhattan(index, empty, b.size) != 1 {
		return ErrIllegalMove
	}
	b.tiles[index], b.tiles[empty] = b.tiles[empty], b.tiles[index]
	b.moves++
	return nil
}

// IsSolved reports whether every tile sits at its goal position.
func (b *Board) IsSolved() bool {
	for i, v := range b.tiles {
		if v != i {
			return false
		}
	}
	return true
}

// Progress is the percentage of positions holding their goal tile, floored.
func (b *Board) Progress() int {
	correct := 0
	for i, v := range b.tiles {
		if v == i {
			correct++
		}
	}
	return correct * 100 / len(b.tiles)
}

func (b *Board) Size() int  { return b.size }
func (b *Board) Moves() int { return b.moves }

// Tiles returns a copy of the current permutation.
func (b *Board) Tiles() []int {
	out := make([]int, len(b.tiles))
	copy(out, b.tiles)
	return out
}

// SetTiles replaces the permutation; used by consumers that advance a board
// from an externally computed state (e.g. a hint application preview).
func (b *Board) SetTiles(tiles []int) {
	b.tiles = make([]int, len(tiles))
	copy(b.tiles, tiles)
}

func (b *Board) EmptyIndex() int {
	want := len(b.tiles) - 1
	for i, v := range b.tiles {
		if v == want {
			return i
		}
	}
	return -1
}

// neighbors lists the positions orthogonally adjacent to idx.
func (b *Board) neighbors(idx int) []int {
	row, col := idx/b.size, idx%b.size
	out := make([]int, 0, 4)
	if row > 0 {
		out = append(out, idx-b.size)
	}
	if row < b.size-1 {
		out = append(out, idx+b.size)
	}
	if col > 0 {
		out = append(out, idx-1)
	}
	if col < b.size-1 {
		out = append(out, idx+1)
	}
	return out
}

func manhattan(a, b, size int) int {
	dr := a/size - b/size
	dc := a%size - b%size
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
