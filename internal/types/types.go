package types

import "github.com/riftslide/backend/internal/game"

// Inbound intent names.
const (
	IntentCreateRoom     = "create_room"
	IntentJoinRoom       = "join_room"
	IntentToggleReady    = "toggle_ready"
	IntentUpdateSettings = "update_settings"
	IntentStartGame      = "start_game"
	IntentUpdateProgress = "update_progress"
	IntentPlayerFinished = "player_finished"
)

// Outbound event names.
const (
	EventRoomCreated      = "room_created"
	EventJoinedRoom       = "joined_room"
	EventRoomUpdate       = "room_update"
	EventError            = "error"
	EventGameStarted      = "game_started"
	EventOpponentProgress = "opponent_progress"
	EventPlayerFinished   = "player_finished_notify"
	EventGameOver         = "game_over"
	EventPlayerLeft       = "player_left"
	EventRoomDissolved    = "room_dissolved"
	EventMatchInterrupted = "match_interrupted"
)

type ClientMessage struct {
	Type        string              `json:"type"`
	RoomID      string              `json:"roomId,omitempty"`
	DisplayName string              `json:"displayName,omitempty"`
	Settings    *game.SettingsPatch `json:"settings,omitempty"`
	ChampionID  *string             `json:"championId,omitempty"`
	SkinID      *string             `json:"skinId,omitempty"`
	Progress    int                 `json:"progress,omitempty"`
	Score       int                 `json:"score,omitempty"`
	Moves       int                 `json:"moves,omitempty"`
	FinishTime  int                 `json:"finishTime,omitempty"`
}

type ServerMessage struct {
	Type         string                 `json:"type"`
	Room         *game.Room             `json:"room,omitempty"`
	Message      string                 `json:"message,omitempty"`
	ConnectionID string                 `json:"connectionId,omitempty"`
	Progress     int                    `json:"progress,omitempty"`
	Score        int                    `json:"score,omitempty"`
	FinishTime   int                    `json:"finishTime,omitempty"`
	Players      map[string]game.Player `json:"players,omitempty"`
	WinnerID     string                 `json:"winnerId,omitempty"`
}

func Error(message string) ServerMessage {
	return ServerMessage{Type: EventError, Message: message}
}
