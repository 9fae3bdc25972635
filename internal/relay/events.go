package relay

import (
	"encoding/json"

	"github.com/grindhub/grindhub-api/internal/models"
)

// Wire event names. Clients join a room first, then exchange chat messages;
// the relay announces presence changes to the remaining members.
const (
	EventJoinGroup   = "joinGroup"
	EventChatMessage = "chat message"
	EventUserJoined  = "user joined"
	EventUserLeft    = "user left"
	EventHistory     = "history"
	EventRoster      = "roster"
	EventError       = "error"
)

// JoinPayload identifies the room and the member joining it.
type JoinPayload struct {
	GroupID  string `json:"groupid"`
	Username string `json:"username"`
	UserID   string `json:"userid"`
}

// ChatPayload carries one chat message in either direction.
type ChatPayload struct {
	User string `json:"user"`
	Msg  string `json:"msg"`
}

// PresencePayload announces a member arriving or leaving.
type PresencePayload struct {
	User string `json:"user"`
}

// HistoryPayload replays the room's persisted messages on join.
type HistoryPayload struct {
	Messages []models.GroupMessage `json:"messages"`
}

// RosterPayload lists the usernames enrolled in the room.
type RosterPayload struct {
	Members []string `json:"members"`
}

// ErrorPayload reports a per-session failure without closing the socket.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Frame is one websocket event envelope.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ClientFrame is the inbound envelope; Data is decoded per event.
type ClientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
