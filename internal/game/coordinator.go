// Package game holds the room data model and the pure protocol transitions
// the room actor drives. Apply never does I/O and never touches its input
// room; randomness (the shuffle seed) is drawn by the caller and passed in
// on the command.
package game

import (
	"errors"
	"fmt"
	"sort"
)

// Surfaced to the caller as error events.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomStarted  = errors.New("game already started")
	ErrRoomFull     = errors.New("room is full")
)

// Silently dropped by the room actor: stale or unauthorized intents never
// produce error dialogs on the other end.
var (
	ErrNotHost          = errors.New("not the host")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrNotPlaying       = errors.New("room is not playing")
	ErrNotEnoughPlayers = errors.New("need at least 2 players")
	ErrGuestsNotReady   = errors.New("not all guests are ready")
)

type CommandType string

const (
	CmdJoin           CommandType = "Join"
	CmdToggleReady    CommandType = "ToggleReady"
	CmdUpdateSettings CommandType = "UpdateSettings"
	CmdStartGame      CommandType = "StartGame"
	CmdUpdateProgress CommandType = "UpdateProgress"
	CmdPlayerFinished CommandType = "PlayerFinished"
	CmdLeave          CommandType = "Leave"
)

type Command struct {
	Type   CommandType
	ConnID string

	Name string // Join

	Settings   *SettingsPatch // UpdateSettings
	ChampionID *string
	SkinID     *string
	Seed       int64 // fresh seed drawn by the actor for UpdateSettings

	Progress   int // UpdateProgress
	Score      int // UpdateProgress / PlayerFinished
	FinishTime int // PlayerFinished
}

// Audience scopes an event's fan-out relative to the command's actor.
type Audience int

const (
	ToCaller Audience = iota
	ToOthers
	ToAll
)

type EventType string

const (
	EvtJoined           EventType = "Joined"
	EvtRoomUpdate       EventType = "RoomUpdate"
	EvtGameStarted      EventType = "GameStarted"
	EvtProgress         EventType = "Progress"
	EvtFinished         EventType = "Finished"
	EvtGameOver         EventType = "GameOver"
	EvtPlayerLeft       EventType = "PlayerLeft"
	EvtRoomDissolved    EventType = "RoomDissolved"
	EvtMatchInterrupted EventType = "MatchInterrupted"
)

type Event struct {
	Type     EventType
	Audience Audience

	ConnID     string // subject of the event (leaver, finisher, ...)
	Progress   int
	Score      int
	FinishTime int

	WinnerID string            // GameOver
	Players  map[string]Player // GameOver final roster
}

// Apply validates a command against the room and returns the events to fan
// out plus the successor room state. On error the returned room is the
// input, unchanged.
func Apply(r Room, cmd Command) ([]Event, Room, error) {
	switch cmd.Type {
	case CmdJoin:
		if r.Status != StatusLobby {
			return nil, r, ErrRoomStarted
		}
		if len(r.Players) >= MaxPlayers {
			return nil, r, ErrRoomFull
		}

		next := r.clone()
		name := cmd.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", len(next.Players)+1)
		}
		next.Players[cmd.ConnID] = Player{
			ConnectionID: cmd.ConnID,
			Name:         name,
		}
		events := []Event{
			{Type: EvtJoined, Audience: ToCaller},
			{Type: EvtRoomUpdate, Audience: ToAll},
		}
		return events, next, nil

	case CmdToggleReady:
		p, ok := r.Players[cmd.ConnID]
		if !ok {
			return nil, r, ErrUnknownPlayer
		}
		if p.IsHost {
			return nil, r, ErrNotHost
		}

		next := r.clone()
		p.IsReady = !p.IsReady
		next.Players[cmd.ConnID] = p
		return []Event{{Type: EvtRoomUpdate, Audience: ToAll}}, next, nil

	case CmdUpdateSettings:
		p, ok := r.Players[cmd.ConnID]
		if !ok {
			return nil, r, ErrUnknownPlayer
		}
		if !p.IsHost {
			return nil, r, ErrNotHost
		}

		next := r.clone()
		if cmd.Settings != nil {
			if cmd.Settings.GridSize != nil {
				next.Settings.GridSize = *cmd.Settings.GridSize
			}
			if cmd.Settings.Mode != nil {
				next.Settings.Mode = *cmd.Settings.Mode
			}
			if cmd.Settings.IsVoidMode != nil {
				next.Settings.IsVoidMode = *cmd.Settings.IsVoidMode
			}
			if cmd.Settings.FilterType != nil {
				next.Settings.FilterType = *cmd.Settings.FilterType
			}
		}
		if cmd.ChampionID != nil {
			next.ChampionID = *cmd.ChampionID
		}
		if cmd.SkinID != nil {
			next.SkinID = *cmd.SkinID
		}

		// rule changes invalidate prior readiness
		for id, guest := range next.Players {
			if !guest.IsHost {
				guest.IsReady = false
				next.Players[id] = guest
			}
		}
		next.Seed = cmd.Seed
		return []Event{{Type: EvtRoomUpdate, Audience: ToAll}}, next, nil

	case CmdStartGame:
		p, ok := r.Players[cmd.ConnID]
		if !ok {
			return nil, r, ErrUnknownPlayer
		}
		if !p.IsHost {
			return nil, r, ErrNotHost
		}
		if len(r.Players) < 2 {
			return nil, r, ErrNotEnoughPlayers
		}
		for _, guest := range r.Players {
			if !guest.IsHost && !guest.IsReady {
				return nil, r, ErrGuestsNotReady
			}
		}

		next := r.clone()
		next.Status = StatusPlaying
		for id, pl := range next.Players {
			pl.Progress = 0
			pl.Score = 0
			pl.Finished = false
			pl.FinishTime = 0
			next.Players[id] = pl
		}
		return []Event{{Type: EvtGameStarted, Audience: ToAll}}, next, nil

	case CmdUpdateProgress:
		if r.Status != StatusPlaying {
			return nil, r, ErrNotPlaying
		}
		p, ok := r.Players[cmd.ConnID]
		if !ok {
			return nil, r, ErrUnknownPlayer
		}

		next := r.clone()
		p.Progress = cmd.Progress
		p.Score = cmd.Score
		next.Players[cmd.ConnID] = p
		events := []Event{{
			Type:     EvtProgress,
			Audience: ToOthers,
			ConnID:   cmd.ConnID,
			Progress: cmd.Progress,
			Score:    cmd.Score,
		}}
		return events, next, nil

	case CmdPlayerFinished:
		if r.Status != StatusPlaying {
			return nil, r, ErrNotPlaying
		}
		p, ok := r.Players[cmd.ConnID]
		if !ok {
			return nil, r, ErrUnknownPlayer
		}

		next := r.clone()
		if !p.Finished {
			p.Finished = true
			p.FinishTime = cmd.FinishTime
		}
		p.Score = cmd.Score
		next.Players[cmd.ConnID] = p

		events := []Event{{
			Type:       EvtFinished,
			Audience:   ToAll,
			ConnID:     cmd.ConnID,
			FinishTime: p.FinishTime,
			Score:      p.Score,
		}}

		allFinished := true
		for _, pl := range next.Players {
			if !pl.Finished {
				allFinished = false
				break
			}
		}
		if allFinished {
			next.Status = StatusFinished
			events = append(events, Event{
				Type:     EvtGameOver,
				Audience: ToAll,
				WinnerID: Winner(next.Players, next.Settings.Mode),
				Players:  next.Players,
			})
		}
		return events, next, nil

	case CmdLeave:
		p, ok := r.Players[cmd.ConnID]
		if !ok {
			return nil, r, ErrUnknownPlayer
		}

		next := r.clone()
		delete(next.Players, cmd.ConnID)

		events := []Event{{Type: EvtPlayerLeft, Audience: ToOthers, ConnID: cmd.ConnID}}
		if len(next.Players) == 0 {
			return events, next, nil
		}
		if p.IsHost {
			// no host election: the room ends for everyone
			events = append(events, Event{Type: EvtRoomDissolved, Audience: ToOthers})
		} else if next.Status == StatusPlaying && len(next.Players) < 2 {
			// advisory only; status is not auto-transitioned
			events = append(events, Event{Type: EvtMatchInterrupted, Audience: ToOthers})
		}
		return events, next, nil

	default:
		return nil, r, fmt.Errorf("unsupported command %q", cmd.Type)
	}
}

// Winner picks the round winner from a fully finished roster: fastest finish
// in TIME_ATTACK, highest score in SCORE_ATTACK; ties fall back to the other
// metric, then to connection id so the result is stable everywhere.
func Winner(players map[string]Player, mode GameMode) string {
	ranked := make([]Player, 0, len(players))
	for _, p := range players {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if mode == ModeScoreAttack {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.FinishTime != b.FinishTime {
				return a.FinishTime < b.FinishTime
			}
		} else {
			if a.FinishTime != b.FinishTime {
				return a.FinishTime < b.FinishTime
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		}
		return a.ConnectionID < b.ConnectionID
	})
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0].ConnectionID
}
