package relay

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
)

// ChatStore persists chat traffic. The relay writes through it before any
// fan-out so a delivered message is always a stored message.
type ChatStore interface {
	History(ctx context.Context, groupID string) ([]models.GroupMessage, error)
	Roster(ctx context.Context, groupID string) ([]string, error)
	Post(ctx context.Context, groupID, userID, username, content string) (*models.GroupMessage, error)
}

// Metrics receives relay lifecycle and delivery events.
type Metrics interface {
	SessionOpened()
	SessionClosed()
	RecordRelayMessage(outcome string)
}

// Session is one member's live connection to a group room. Each session
// gets its own locally generated ID; echo suppression keys on that ID, not
// the username, so duplicate usernames never swallow each other's messages.
//
// The session keeps an append-only message log. Sends are appended
// optimistically before the persist round-trip resolves; a failed persist
// surfaces as an error frame, never as a rollback of the log.
type Session struct {
	id       string
	userID   string
	username string
	groupID  string

	conn    Conn
	hub     *Hub
	store   ChatStore
	metrics Metrics
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	log    []models.ChatMessage
	joined bool

	closeOnce sync.Once
}

// NewSession binds a connection to the hub. The session is inert until a
// join frame arrives.
func NewSession(ctx context.Context, conn Conn, hub *Hub, store ChatStore, metrics Metrics, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	sctx, cancel := context.WithCancel(ctx)
	return &Session{
		id:      uuid.NewString(),
		conn:    conn,
		hub:     hub,
		store:   store,
		metrics: metrics,
		logger:  logger,
		ctx:     sctx,
		cancel:  cancel,
	}
}

// ID returns the session's locally generated identifier.
func (s *Session) ID() string { return s.id }

// Run consumes inbound frames until the connection drops, then tears the
// session down. Safe to call once per session.
func (s *Session) Run() {
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	defer s.Close()

	for {
		var frame ClientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if s.ctx.Err() == nil {
				s.logger.Debug("session read ended", zap.String("session", s.id), zap.Error(err))
			}
			return
		}
		s.handle(frame)
	}
}

func (s *Session) handle(frame ClientFrame) {
	switch frame.Event {
	case EventJoinGroup:
		var payload JoinPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			s.sendError("bad_payload", "malformed join payload")
			return
		}
		s.Join(payload)
	case EventChatMessage:
		var payload ChatPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			s.sendError("bad_payload", "malformed chat payload")
			return
		}
		s.Send(payload.Msg)
	default:
		s.sendError("unknown_event", "unrecognized event "+frame.Event)
	}
}

// Join enters the group room, replays persisted history into the local log,
// sends the member roster and announces the arrival to the other members.
// A roster fetch failure drops the roster frame but never blocks the join.
func (s *Session) Join(payload JoinPayload) {
	if payload.GroupID == "" || payload.UserID == "" {
		s.sendError("bad_payload", "groupid and userid are required")
		return
	}

	s.mu.Lock()
	if s.joined {
		s.mu.Unlock()
		s.sendError("already_joined", "session already joined a group")
		return
	}
	s.groupID = payload.GroupID
	s.userID = payload.UserID
	s.username = payload.Username
	s.joined = true
	s.mu.Unlock()

	history, err := s.store.History(s.ctx, payload.GroupID)
	if err != nil {
		s.logger.Warn("failed to load history on join",
			zap.String("groupid", payload.GroupID), zap.Error(err))
		history = []models.GroupMessage{}
	}

	roster, rosterErr := s.store.Roster(s.ctx, payload.GroupID)
	if rosterErr != nil {
		s.logger.Warn("failed to load roster on join",
			zap.String("groupid", payload.GroupID), zap.Error(rosterErr))
	}

	s.mu.Lock()
	for _, msg := range history {
		s.log = append(s.log, models.ChatMessage{
			ID:      msg.ID,
			Sender:  msg.Username,
			Content: msg.Content,
			Origin:  models.OriginServerHistory,
		})
	}
	s.mu.Unlock()

	s.hub.register(s)
	s.deliver(Frame{Event: EventHistory, Data: HistoryPayload{Messages: history}})
	if rosterErr == nil {
		s.deliver(Frame{Event: EventRoster, Data: RosterPayload{Members: roster}})
	}
	s.hub.Broadcast(s.groupID, s.id, Frame{Event: EventUserJoined, Data: PresencePayload{User: s.username}})
}

// Send appends the message optimistically, persists it, then relays it to
// the other members. Whitespace-only input is a silent no-op. A persist
// failure keeps the optimistic entry and reports the failure on this
// session only; nothing is relayed.
func (s *Session) Send(content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	if !s.joined {
		s.mu.Unlock()
		s.sendError("not_joined", "join a group before sending")
		return
	}
	s.log = append(s.log, models.ChatMessage{
		ID:      uuid.NewString(),
		Sender:  s.username,
		Content: trimmed,
		Origin:  models.OriginLocalOptimistic,
	})
	s.mu.Unlock()

	_, err := s.store.Post(s.ctx, s.groupID, s.userID, s.username, trimmed)
	if s.ctx.Err() != nil {
		// Session closed while the persist was in flight; the result
		// has no one to report to.
		return
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRelayMessage("persist_failed")
		}
		s.logger.Error("failed to persist chat message",
			zap.String("groupid", s.groupID),
			zap.String("session", s.id),
			zap.Error(err))
		s.sendError("persist_failed", "message could not be saved")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordRelayMessage("delivered")
	}
	s.hub.Broadcast(s.groupID, s.id, Frame{
		Event: EventChatMessage,
		Data:  ChatPayload{User: s.username, Msg: trimmed},
	})
}

// deliver writes a frame to this session's socket, recording relayed chat
// messages in the local log.
func (s *Session) deliver(frame Frame) {
	if s.ctx.Err() != nil {
		return
	}
	if frame.Event == EventChatMessage {
		if payload, ok := frame.Data.(ChatPayload); ok {
			s.mu.Lock()
			s.log = append(s.log, models.ChatMessage{
				ID:      uuid.NewString(),
				Sender:  payload.User,
				Content: payload.Msg,
				Origin:  models.OriginRemoteRelay,
			})
			s.mu.Unlock()
		}
	}
	if err := s.conn.WriteJSON(frame); err != nil {
		s.logger.Debug("session write failed", zap.String("session", s.id), zap.Error(err))
		s.Close()
	}
}

func (s *Session) sendError(code, message string) {
	if s.ctx.Err() != nil {
		return
	}
	if err := s.conn.WriteJSON(Frame{Event: EventError, Data: ErrorPayload{Code: code, Message: message}}); err != nil {
		s.Close()
	}
}

// Close tears the session down. Calling it more than once is harmless; at
// most one "user left" announcement goes out.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()

		s.mu.Lock()
		joined := s.joined
		groupID := s.groupID
		username := s.username
		s.mu.Unlock()

		if joined {
			s.hub.unregister(s)
			s.hub.Broadcast(groupID, s.id, Frame{Event: EventUserLeft, Data: PresencePayload{User: username}})
		}
		_ = s.conn.Close()
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
	})
}

// Log returns a copy of the session's append-only message log.
func (s *Session) Log() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.log))
	copy(out, s.log)
	return out
}
