// Command solo is a terminal sliding-tile client for local play against the
// same engine and hint solver the multiplayer builds ship with.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/riftslide/backend/internal/puzzle"
	"github.com/riftslide/backend/internal/solver"
)

type session struct {
	board      *puzzle.Board
	voidMode   bool
	filter     string
	elapsed    int
	usedAssist bool
	hintIdx    int // -1 when no hint is showing
	solvedAt   int // -1 until solved
}

func main() {
	size := flag.Int("size", 3, "grid size N (board is N×N)")
	seed := flag.Int64("seed", 0, "shuffle seed; 0 shuffles randomly")
	voidMode := flag.Bool("void", false, "void mode scoring")
	filter := flag.String("filter", "none", "filter type (none|grayscale|invert|void|contrast|blur)")
	flag.Parse()

	if *size < 2 || *size > 8 {
		fmt.Fprintln(os.Stderr, "size must be between 2 and 8")
		os.Exit(1)
	}

	if err := termbox.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "terminal init failed:", err)
		os.Exit(1)
	}
	defer termbox.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hints := solver.NewWorker(ctx)

	s := newSession(*size, *seed, *voidMode, *filter)
	run(s, hints, *size, *seed)
}

func newSession(size int, seed int64, voidMode bool, filter string) *session {
	b := puzzle.NewBoard(size)
	if seed != 0 {
		b.ShuffleSeeded(seed)
	} else {
		b.Shuffle()
	}
	return &session{
		board:    b,
		voidMode: voidMode,
		filter:   filter,
		hintIdx:  -1,
		solvedAt: -1,
	}
}

func run(s *session, hints *solver.Worker, size int, seed int64) {
	events := make(chan termbox.Event, 8)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	draw(s)
	for {
		select {
		case ev := <-events:
			if ev.Type != termbox.EventKey {
				continue
			}
			switch {
			case ev.Key == termbox.KeyEsc || ev.Ch == 'q':
				return
			case ev.Ch == 'r':
				*s = *newSession(size, seed, s.voidMode, s.filter)
			case ev.Ch == 'h':
				if s.solvedAt == -1 {
					s.usedAssist = true
					hints.Request(s.board.Tiles(), s.board.Size())
				}
			case s.solvedAt == -1:
				s.move(ev.Key)
			}

		case <-ticker.C:
			if s.solvedAt == -1 {
				s.elapsed++
			}

		case res := <-hints.Results():
			if res.OK {
				s.hintIdx = res.Move
			} else {
				s.hintIdx = -1
			}
		}
		draw(s)
	}
}

// move slides the tile next to the empty slot in the pressed direction.
func (s *session) move(key termbox.Key) {
	empty := s.board.EmptyIndex()
	size := s.board.Size()

	var target int
	switch key {
	case termbox.KeyArrowUp:
		target = empty + size
	case termbox.KeyArrowDown:
		target = empty - size
	case termbox.KeyArrowLeft:
		target = empty + 1
	case termbox.KeyArrowRight:
		target = empty - 1
	default:
		return
	}

	if err := s.board.ApplyMove(target); err != nil {
		return
	}
	s.hintIdx = -1
	if s.board.IsSolved() {
		s.solvedAt = s.elapsed
	}
}

func (s *session) score() int {
	return puzzle.ComputeScore(
		s.board.Size(), s.board.Moves(), s.elapsed,
		s.voidMode, s.filter, s.usedAssist,
	)
}

func draw(s *session) {
	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	size := s.board.Size()
	tiles := s.board.Tiles()
	blank := size*size - 1
	cellW := 5

	for i, v := range tiles {
		x := (i % size) * cellW
		y := (i / size) * 2
		fg := termbox.ColorWhite
		if v == i {
			fg = termbox.ColorGreen
		}
		if i == s.hintIdx {
			fg = termbox.ColorYellow | termbox.AttrBold
		}
		label := "    "
		if v != blank {
			label = fmt.Sprintf("%3d ", v+1)
		}
		printAt(x, y, label, fg)
	}

	statusY := size*2 + 1
	printAt(0, statusY,
		fmt.Sprintf("moves %d  time %s  score %d", s.board.Moves(), puzzle.FormatTime(s.elapsed), s.score()),
		termbox.ColorWhite)
	if s.solvedAt >= 0 {
		printAt(0, statusY+1,
			fmt.Sprintf("solved in %s! r: again  q: quit", puzzle.FormatTime(s.solvedAt)),
			termbox.ColorGreen|termbox.AttrBold)
	} else {
		printAt(0, statusY+1, "arrows: slide  h: hint  r: reshuffle  q: quit", termbox.ColorBlue)
	}

	_ = termbox.Flush()
}

func printAt(x, y int, text string, fg termbox.Attribute) {
	for i, ch := range text {
		termbox.SetCell(x+i, y, ch, fg, termbox.ColorDefault)
	}
}
