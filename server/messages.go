package server

import (
	"github.com/sheikhrachel/go-gol-engine/model"
	"github.com/sheikhrachel/go-gol-engine/scheduler"
)

const (
	msgStart        = "start"
	msgStop         = "stop"
	msgToggle       = "toggle"
	msgReset        = "reset"
	msgLoadPattern  = "loadPattern"
	msgListPatterns = "listPatterns"
	msgPublish      = "publish"

	msgSnapshot  = "snapshot"
	msgPatterns  = "patterns"
	msgPublished = "published"
	msgError     = "error"
)

type clientMessage struct {
	Type    string         `json:"type"`
	Pattern *model.Pattern `json:"pattern,omitempty"`
	Name    string         `json:"name,omitempty"`
}

type snapshotMessage struct {
	Type       string      `json:"type"`
	Generation uint64      `json:"generation"`
	Running    bool        `json:"running"`
	Population int         `json:"population"`
	Grid       *model.Grid `json:"grid"`
}

func newSnapshotMessage(u scheduler.Update) snapshotMessage {
	return snapshotMessage{
		Type:       msgSnapshot,
		Generation: u.Generation,
		Running:    u.State == scheduler.Running,
		Population: u.Grid.CountLivingCells(),
		Grid:       u.Grid,
	}
}

type patternsMessage struct {
	Type     string          `json:"type"`
	Patterns []model.Pattern `json:"patterns"`
}

type publishedMessage struct {
	Type    string        `json:"type"`
	Pattern model.Pattern `json:"pattern"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
