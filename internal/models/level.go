package models

import "github.com/google/uuid"

// GameMode names the game a preset is played in.
type GameMode string

const (
	ModeDocku  GameMode = "docku"
	ModePuzzle GameMode = "puzzle"
)

// Preset is a catalog level template.
type Preset struct {
	LevelID int      `yaml:"level" json:"level"`
	Mode    GameMode `yaml:"mode" json:"mode"`
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
}

// StartRequest is handed to the level starter once a day has been assigned.
type StartRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Route     string    `json:"route"`
	Mode      GameMode  `json:"mode"`
	Origin    string    `json:"origin"`
	LevelID   int       `json:"level_id"`
	Day       string    `json:"day"`
}
