package models

// GroupMessage is a persisted chat message joined with its sender's
// username, ordered by (datesent, timesent) for history fetches.
type GroupMessage struct {
	ID       string `db:"messageid" json:"messageid"`
	GroupID  string `db:"groupid" json:"groupid"`
	UserID   string `db:"userid" json:"userid"`
	Username string `db:"username" json:"username"`
	Content  string `db:"messagecontent" json:"messagecontent"`
	DateSent string `db:"datesent" json:"datesent"`
	TimeSent int    `db:"timesent" json:"timesent"`
}

// LatestMessage is the newest message per group for the chat list screen.
type LatestMessage struct {
	GroupID string `db:"groupid" json:"groupid"`
	Content string `db:"messagecontent" json:"messagecontent"`
}

// MessageOrigin records how an entry reached a session's local log.
type MessageOrigin string

const (
	OriginLocalOptimistic MessageOrigin = "LOCAL_OPTIMISTIC"
	OriginRemoteRelay     MessageOrigin = "REMOTE_RELAY"
	OriginServerHistory   MessageOrigin = "SERVER_HISTORY"
)

// ChatMessage is one entry in a session's append-only message log.
// Optimistic entries carry a locally generated id; persisted ones the
// server-assigned id. The two are never reconciled, only appended.
type ChatMessage struct {
	ID      string        `json:"id"`
	Sender  string        `json:"sender"`
	Content string        `json:"content"`
	Origin  MessageOrigin `json:"origin"`
}
