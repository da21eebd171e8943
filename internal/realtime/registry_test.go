// internal/realtime/registry_test.go

package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solacelink/solace-backend/internal/users"
)

func newTestRegistry(bufSize int) *Registry {
	return NewRegistry(bufSize, nil)
}

func drain(c *Conn) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.Send():
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestRegisterAndIndexes(t *testing.T) {
	r := newTestRegistry(4)
	userID := uuid.New()

	a := r.Register(userID, users.RoleMember)
	b := r.Register(userID, users.RoleMember)

	assert.Equal(t, 2, r.ActiveConnections())
	assert.Len(t, r.ConnectionsFor(userID), 2)
	assert.Equal(t, []uuid.UUID{userID}, r.ConnectedUsers())

	r.Unregister(a)
	assert.Equal(t, 1, r.ActiveConnections())
	assert.Len(t, r.ConnectionsFor(userID), 1)

	r.Unregister(b)
	assert.Zero(t, r.ActiveConnections())
	assert.Empty(t, r.ConnectedUsers())
}

func TestUnregisterRemovesFromAllIndexes(t *testing.T) {
	r := newTestRegistry(4)
	userID := uuid.New()

	c := r.Register(userID, users.RoleMember)
	r.JoinRoom(c, "groupchat:abc")

	require.Len(t, r.ConnectionsInRoom("groupchat:abc"), 1)

	r.Unregister(c)
	assert.Empty(t, r.ConnectionsFor(userID))
	assert.Empty(t, r.ConnectionsInRoom("groupchat:abc"))

	select {
	case <-c.Done():
	default:
		t.Fatal("expected done channel to be closed")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := newTestRegistry(4)
	c := r.Register(uuid.New(), users.RoleMember)

	r.Unregister(c)
	r.Unregister(c)
	assert.Zero(t, r.ActiveConnections())
}

func TestJoinRoomIdempotent(t *testing.T) {
	r := newTestRegistry(4)
	c := r.Register(uuid.New(), users.RoleMember)

	r.JoinRoom(c, "meeting:1")
	r.JoinRoom(c, "meeting:1")
	assert.Len(t, r.ConnectionsInRoom("meeting:1"), 1)

	r.LeaveRoom(c, "meeting:1")
	assert.Empty(t, r.ConnectionsInRoom("meeting:1"))
}

func TestPushToUserReachesEveryConnection(t *testing.T) {
	r := newTestRegistry(4)
	userID := uuid.New()

	a := r.Register(userID, users.RoleMember)
	b := r.Register(userID, users.RoleMember)

	delivered := r.PushToUser(userID, []byte("payload"))
	assert.Equal(t, 2, delivered)
	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestPushDeliveryIsolation(t *testing.T) {
	r := newTestRegistry(1)
	userID := uuid.New()

	dead := r.Register(userID, users.RoleMember)
	live := r.Register(userID, users.RoleMember)

	// Fill the dead connection's queue so the next push cannot land.
	require.True(t, dead.trySend([]byte("stuck")))

	delivered := r.PushToUser(userID, []byte("payload"))
	assert.Equal(t, 1, delivered)
	assert.Len(t, drain(live), 1)

	// The dead connection was evicted rather than blocking delivery.
	assert.Equal(t, 1, r.ActiveConnections())
	select {
	case <-dead.Done():
	default:
		t.Fatal("expected dead connection to be evicted")
	}
}

func TestPushToRoomScopesDelivery(t *testing.T) {
	r := newTestRegistry(4)

	inRoom := r.Register(uuid.New(), users.RoleMember)
	outside := r.Register(uuid.New(), users.RoleMember)
	r.JoinRoom(inRoom, "groupchat:42")

	delivered := r.PushToRoom("groupchat:42", []byte("payload"))
	assert.Equal(t, 1, delivered)
	assert.Len(t, drain(inRoom), 1)
	assert.Empty(t, drain(outside))
}

func TestPushToAll(t *testing.T) {
	r := newTestRegistry(4)

	a := r.Register(uuid.New(), users.RoleMember)
	b := r.Register(uuid.New(), users.RoleSponsor)

	delivered := r.PushToAll([]byte("payload"))
	assert.Equal(t, 2, delivered)
	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}
