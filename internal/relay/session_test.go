package relay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func (f *fakeConn) ReadJSON(interface{}) error {
	return errors.New("not used in tests")
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if frame, ok := v.(Frame); ok {
		f.frames = append(f.frames, frame)
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, frame := range f.frames {
		out = append(out, frame.Event)
	}
	return out
}

func (f *fakeConn) countEvent(event string) int {
	n := 0
	for _, e := range f.events() {
		if e == event {
			n++
		}
	}
	return n
}

type fakeStore struct {
	mu        sync.Mutex
	history   []models.GroupMessage
	roster    []string
	rosterErr error
	postErr   error
	posted    []string
	postHook  func()
}

func (f *fakeStore) History(context.Context, string) ([]models.GroupMessage, error) {
	return f.history, nil
}

func (f *fakeStore) Roster(context.Context, string) ([]string, error) {
	if f.rosterErr != nil {
		return nil, f.rosterErr
	}
	return f.roster, nil
}

func (f *fakeStore) Post(_ context.Context, groupID, userID, username, content string) (*models.GroupMessage, error) {
	f.mu.Lock()
	f.posted = append(f.posted, content)
	hook := f.postHook
	err := f.postErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &models.GroupMessage{ID: "m1", GroupID: groupID, UserID: userID, Username: username, Content: content}, nil
}

func (f *fakeStore) postedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posted)
}

func joinedSession(t *testing.T, hub *Hub, store *fakeStore, userID, username string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s := NewSession(context.Background(), conn, hub, store, nil, zap.NewNop())
	s.Join(JoinPayload{GroupID: "g1", UserID: userID, Username: username})
	return s, conn
}

func TestJoinReplaysHistoryIntoLog(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{history: []models.GroupMessage{
		{ID: "h1", Username: "bob", Content: "hi"},
		{ID: "h2", Username: "ana", Content: "hello"},
	}}

	s, conn := joinedSession(t, hub, store, "u1", "ana")

	log := s.Log()
	require.Len(t, log, 2)
	assert.Equal(t, models.OriginServerHistory, log[0].Origin)
	assert.Equal(t, "bob", log[0].Sender)
	assert.Equal(t, []string{EventHistory, EventRoster}, conn.events())
}

func TestJoinSendsRosterFrame(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{roster: []string{"ana", "bob"}}

	_, conn := joinedSession(t, hub, store, "u1", "ana")

	require.Equal(t, 1, conn.countEvent(EventRoster))
	var payload RosterPayload
	for _, frame := range conn.frames {
		if frame.Event == EventRoster {
			payload = frame.Data.(RosterPayload)
		}
	}
	assert.Equal(t, []string{"ana", "bob"}, payload.Members)
}

func TestJoinRosterFailureStillJoins(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{rosterErr: errors.New("db down")}

	s, conn := joinedSession(t, hub, store, "u1", "ana")

	assert.Equal(t, 1, conn.countEvent(EventHistory))
	assert.Equal(t, 0, conn.countEvent(EventRoster))
	assert.Equal(t, 1, hub.MemberCount("g1"))

	s.Send("hello")
	assert.Equal(t, 1, store.postedCount())
}

func TestJoinEmptyHistoryStillSendsHistoryFrame(t *testing.T) {
	hub := NewHub(zap.NewNop())
	s, conn := joinedSession(t, hub, &fakeStore{}, "u1", "ana")

	assert.Empty(t, s.Log())
	assert.Equal(t, 1, conn.countEvent(EventHistory))
}

func TestSendRelaysToPeersNotSelf(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{}
	sender, senderConn := joinedSession(t, hub, store, "u1", "ana")
	peer, peerConn := joinedSession(t, hub, store, "u2", "bob")

	sender.Send("  hello world  ")

	senderLog := sender.Log()
	require.Len(t, senderLog, 1)
	assert.Equal(t, models.OriginLocalOptimistic, senderLog[0].Origin)
	assert.Equal(t, "hello world", senderLog[0].Content)

	peerLog := peer.Log()
	require.Len(t, peerLog, 1)
	assert.Equal(t, models.OriginRemoteRelay, peerLog[0].Origin)
	assert.Equal(t, "ana", peerLog[0].Sender)

	assert.Equal(t, 0, senderConn.countEvent(EventChatMessage))
	assert.Equal(t, 1, peerConn.countEvent(EventChatMessage))
}

func TestSendWhitespaceOnlyIsNoOp(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{}
	s, conn := joinedSession(t, hub, store, "u1", "ana")

	s.Send("   \n\t  ")

	assert.Empty(t, s.Log())
	assert.Zero(t, store.postedCount())
	assert.Equal(t, 0, conn.countEvent(EventError))
}

func TestSendPersistFailureKeepsOptimisticEntry(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{postErr: errors.New("db down")}
	sender, senderConn := joinedSession(t, hub, store, "u1", "ana")
	peer, _ := joinedSession(t, hub, store, "u2", "bob")

	sender.Send("hello")

	log := sender.Log()
	require.Len(t, log, 1)
	assert.Equal(t, models.OriginLocalOptimistic, log[0].Origin)

	assert.Empty(t, peer.Log())
	assert.Equal(t, 1, senderConn.countEvent(EventError))
}

func TestEchoSuppressionKeysOnSessionNotUsername(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{}
	sender, _ := joinedSession(t, hub, store, "u1", "ana")
	namesake, _ := joinedSession(t, hub, store, "u1", "ana")

	sender.Send("hello")

	require.Len(t, sender.Log(), 1)
	assert.Equal(t, models.OriginLocalOptimistic, sender.Log()[0].Origin)

	namesakeLog := namesake.Log()
	require.Len(t, namesakeLog, 1)
	assert.Equal(t, models.OriginRemoteRelay, namesakeLog[0].Origin)
}

func TestCloseIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{}
	s, _ := joinedSession(t, hub, store, "u1", "ana")
	_, peerConn := joinedSession(t, hub, store, "u2", "bob")

	s.Close()
	s.Close()

	assert.Equal(t, 1, peerConn.countEvent(EventUserLeft))
	assert.Equal(t, 1, hub.MemberCount("g1"))
}

func TestLatePersistResultDiscardedAfterClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{}
	sender, senderConn := joinedSession(t, hub, store, "u1", "ana")
	peer, _ := joinedSession(t, hub, store, "u2", "bob")

	store.postHook = func() { sender.Close() }
	sender.Send("hello")

	// Optimistic entry stays, but nothing is relayed or reported once
	// the session has closed.
	require.Len(t, sender.Log(), 1)
	assert.Empty(t, peer.Log())
	assert.Equal(t, 0, senderConn.countEvent(EventError))
}

func TestJoinAnnouncesToExistingMembers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	store := &fakeStore{}
	_, firstConn := joinedSession(t, hub, store, "u1", "ana")
	joinedSession(t, hub, store, "u2", "bob")

	assert.Equal(t, 1, firstConn.countEvent(EventUserJoined))
	assert.Equal(t, 2, hub.MemberCount("g1"))
}
