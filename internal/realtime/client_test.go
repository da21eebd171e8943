// internal/realtime/client_test.go

package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/solacelink/solace-backend/internal/users"
)

func TestNewClientWriteTimeout(t *testing.T) {
	registry := newTestRegistry(4)
	conn := registry.Register(uuid.New(), users.RoleMember)
	defer registry.Unregister(conn)

	c := NewClient(registry, conn, nil, nil, 3*time.Second)
	assert.Equal(t, 3*time.Second, c.writeTimeout)
}

func TestNewClientWriteTimeoutDefault(t *testing.T) {
	registry := newTestRegistry(4)
	conn := registry.Register(uuid.New(), users.RoleMember)
	defer registry.Unregister(conn)

	c := NewClient(registry, conn, nil, nil, 0)
	assert.Equal(t, writeWait, c.writeTimeout)
}
