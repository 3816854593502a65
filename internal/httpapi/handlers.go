package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/riftslide/backend/internal/metrics"
	"github.com/riftslide/backend/internal/solver"
)

type hintRequest struct {
	Tiles    []int `json:"tiles"`
	GridSize int   `json:"gridSize"`
}

type hintResponse struct {
	Move  int  `json:"move"`
	Found bool `json:"found"`
}

// Hint runs one bounded solve synchronously. Clients with a local solver
// never call this; it exists for thin builds that want server-side hints.
func Hint(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if !validBoard(req.Tiles, req.GridSize) {
			http.Error(w, "tiles must be a permutation of 0..gridSize²-1", http.StatusBadRequest)
			return
		}

		start := time.Now()
		move, found := solver.NextHintMove(req.Tiles, req.GridSize)
		m.ObserveHint(time.Since(start).Seconds())

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(hintResponse{Move: move, Found: found})
	}
}

func validBoard(tiles []int, gridSize int) bool {
	if gridSize < 2 || gridSize > 8 || len(tiles) != gridSize*gridSize {
		return false
	}
	seen := make([]bool, len(tiles))
	for _, v := range tiles {
		if v < 0 || v >= len(tiles) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
