package ports_test

import (
	"testing"

	"github.com/target/event-planner/internal/mocks"
	mockauth "github.com/target/event-planner/internal/mocks/auth"
	"github.com/target/event-planner/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.IdentityProvider = (*mocks.MockIdentityProvider)(nil)
	var _ ports.SessionStore = (*mockauth.MemorySessionStore)(nil)
	var _ ports.RoleResolver = mockauth.StaticRoleResolver{}
}
