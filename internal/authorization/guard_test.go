package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accountdomain "github.com/tuanemuy/kissa/internal/account/domain"
	"gorm.io/gorm"
)

type mockAccountRepo struct {
	users map[snowflake.ID]*accountdomain.User
}

func (m *mockAccountRepo) InsertUser(ctx context.Context, db *gorm.DB, user *accountdomain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockAccountRepo) FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*accountdomain.User, error) {
	return m.users[id], nil
}

func (m *mockAccountRepo) InsertPaymentMethod(ctx context.Context, db *gorm.DB, method *accountdomain.PaymentMethod) error {
	return nil
}

func (m *mockAccountRepo) FindPaymentMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*accountdomain.PaymentMethod, error) {
	return nil, nil
}

func newGuardFixture(t *testing.T) (*Guard, *mockAccountRepo, *snowflake.Node) {
	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	repo := &mockAccountRepo{users: make(map[snowflake.ID]*accountdomain.User)}
	return NewGuard(GuardParam{Repo: repo}), repo, node
}

func TestRequireActiveUser(t *testing.T) {
	guard, repo, node := newGuardFixture(t)
	ctx := context.Background()

	activeID := node.Generate()
	suspendedID := node.Generate()
	repo.users[activeID] = &accountdomain.User{ID: activeID, Status: accountdomain.UserStatusActive}
	repo.users[suspendedID] = &accountdomain.User{ID: suspendedID, Status: accountdomain.UserStatusSuspended}

	user, err := guard.RequireActiveUser(ctx, activeID)
	require.NoError(t, err)
	assert.Equal(t, activeID, user.ID)

	_, err = guard.RequireActiveUser(ctx, suspendedID)
	assert.ErrorIs(t, err, ErrUserInactive)

	_, err = guard.RequireActiveUser(ctx, node.Generate())
	assert.ErrorIs(t, err, accountdomain.ErrUserNotFound)
}

func TestRequireAdmin(t *testing.T) {
	guard, repo, node := newGuardFixture(t)
	ctx := context.Background()

	adminID := node.Generate()
	editorID := node.Generate()
	suspendedAdminID := node.Generate()
	repo.users[adminID] = &accountdomain.User{
		ID: adminID, Role: accountdomain.UserRoleAdmin, Status: accountdomain.UserStatusActive,
	}
	repo.users[editorID] = &accountdomain.User{
		ID: editorID, Role: accountdomain.UserRoleEditor, Status: accountdomain.UserStatusActive,
	}
	repo.users[suspendedAdminID] = &accountdomain.User{
		ID: suspendedAdminID, Role: accountdomain.UserRoleAdmin, Status: accountdomain.UserStatusSuspended,
	}

	user, err := guard.RequireAdmin(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, adminID, user.ID)

	_, err = guard.RequireAdmin(ctx, editorID)
	assert.ErrorIs(t, err, ErrAdminPermissionRequired)

	// Standing is checked before role.
	_, err = guard.RequireAdmin(ctx, suspendedAdminID)
	assert.ErrorIs(t, err, ErrUserInactive)
}
