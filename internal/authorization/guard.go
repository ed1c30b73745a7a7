// Package authorization provides the reusable account checks shared by
// privileged operations.
package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tuanemuy/kissa/internal/account/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var (
	ErrUserInactive            = errors.New("user_inactive")
	ErrAdminPermissionRequired = errors.New("admin_permission_required")
)

type Guard struct {
	db   *gorm.DB
	repo accountdomain.Repository
}

type GuardParam struct {
	fx.In

	DB   *gorm.DB
	Repo accountdomain.Repository
}

func NewGuard(p GuardParam) *Guard {
	return &Guard{db: p.DB, repo: p.Repo}
}

// RequireActiveUser loads the user and rejects missing or non-active accounts.
func (g *Guard) RequireActiveUser(ctx context.Context, userID snowflake.ID) (*accountdomain.User, error) {
	user, err := g.repo.FindUserByID(ctx, g.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, accountdomain.ErrUserNotFound
	}
	if user.Status != accountdomain.UserStatusActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// RequireAdmin is RequireActiveUser plus the admin role check. Every
// admin-scoped operation goes through here.
func (g *Guard) RequireAdmin(ctx context.Context, userID snowflake.ID) (*accountdomain.User, error) {
	user, err := g.RequireActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != accountdomain.UserRoleAdmin {
		return nil, ErrAdminPermissionRequired
	}
	return user, nil
}
