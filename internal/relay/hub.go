package relay

import (
	"sync"

	"go.uber.org/zap"
)

// Hub tracks live sessions per group and fans frames out to them. Sessions
// are keyed by their locally generated session ID, so two tabs of the same
// user are distinct members and echo suppression never mutes a namesake.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[string]*Session
	logger *zap.Logger
}

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{groups: make(map[string]map[string]*Session), logger: logger}
}

func (h *Hub) register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[s.groupID]
	if !ok {
		members = make(map[string]*Session)
		h.groups[s.groupID] = members
	}
	members[s.id] = s
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[s.groupID]
	if !ok {
		return
	}
	delete(members, s.id)
	if len(members) == 0 {
		delete(h.groups, s.groupID)
	}
}

// Broadcast delivers a frame to every session in the group except the
// originating one.
func (h *Hub) Broadcast(groupID, originSessionID string, frame Frame) {
	h.mu.RLock()
	var targets []*Session
	for id, member := range h.groups[groupID] {
		if id == originSessionID {
			continue
		}
		targets = append(targets, member)
	}
	h.mu.RUnlock()

	for _, member := range targets {
		member.deliver(frame)
	}
}

// MemberCount reports the live sessions in a group.
func (h *Hub) MemberCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}
