package game

// MaxPlayers caps the roster of a single room.
const MaxPlayers = 8

type Status string

const (
	StatusLobby    Status = "LOBBY"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

type GameMode string

const (
	ModeTimeAttack  GameMode = "TIME_ATTACK"
	ModeScoreAttack GameMode = "SCORE_ATTACK"
)

type FilterType string

const (
	FilterNone      FilterType = "none"
	FilterGrayscale FilterType = "grayscale"
	FilterInvert    FilterType = "invert"
	FilterVoid      FilterType = "void"
	FilterContrast  FilterType = "contrast"
	FilterBlur      FilterType = "blur"
)

type GameSettings struct {
	GridSize   int        `json:"gridSize"`
	Mode       GameMode   `json:"mode"`
	IsVoidMode bool       `json:"isVoidMode"`
	FilterType FilterType `json:"filterType"`
}

// SettingsPatch carries a partial settings update; nil fields are left
// unchanged by the merge.
type SettingsPatch struct {
	GridSize   *int        `json:"gridSize,omitempty"`
	Mode       *GameMode   `json:"mode,omitempty"`
	IsVoidMode *bool       `json:"isVoidMode,omitempty"`
	FilterType *FilterType `json:"filterType,omitempty"`
}

type Player struct {
	ConnectionID string `json:"connectionId"`
	IsHost       bool   `json:"isHost"`
	Name         string `json:"name"`
	IsReady      bool   `json:"isReady"`
	Progress     int    `json:"progress"`
	Score        int    `json:"score"`
	Finished     bool   `json:"finished"`
	FinishTime   int    `json:"finishTime"`
}

type Room struct {
	ID         string            `json:"id"`
	Players    map[string]Player `json:"players"`
	Settings   GameSettings      `json:"settings"`
	Status     Status            `json:"status"`
	ChampionID string            `json:"championId"`
	SkinID     string            `json:"skinId"`
	Seed       int64             `json:"seed"`
}

func DefaultSettings() GameSettings {
	return GameSettings{
		GridSize:   3,
		Mode:       ModeTimeAttack,
		IsVoidMode: false,
		FilterType: FilterNone,
	}
}

// NewRoom builds a fresh lobby with the caller seated as host.
func NewRoom(id, hostConnID, hostName string, seed int64) Room {
	if hostName == "" {
		hostName = "Host"
	}
	return Room{
		ID: id,
		Players: map[string]Player{
			hostConnID: {
				ConnectionID: hostConnID,
				IsHost:       true,
				Name:         hostName,
			},
		},
		Settings:   DefaultSettings(),
		Status:     StatusLobby,
		ChampionID: "Ahri",
		SkinID:     "",
		Seed:       seed,
	}
}

// clone gives Apply value semantics over the players map.
func (r Room) clone() Room {
	r.Players = ClonePlayers(r.Players)
	return r
}

// Snapshot returns an independent copy safe to hand to another goroutine.
func (r Room) Snapshot() Room {
	return r.clone()
}

func ClonePlayers(players map[string]Player) map[string]Player {
	out := make(map[string]Player, len(players))
	for k, v := range players {
		out[k] = v
	}
	return out
}

// Host returns the room's host, if any.
func (r Room) Host() (Player, bool) {
	for _, p := range r.Players {
		if p.IsHost {
			return p, true
		}
	}
	return Player{}, false
}
