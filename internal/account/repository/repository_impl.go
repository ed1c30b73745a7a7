package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tuanemuy/kissa/internal/account/domain"
	pkgrepository "github.com/tuanemuy/kissa/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() accountdomain.Repository {
	return &repo{}
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, user *accountdomain.User) error {
	return pkgrepository.ProvideStore[accountdomain.User](db).Create(ctx, user)
}

func (r *repo) FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*accountdomain.User, error) {
	return pkgrepository.ProvideStore[accountdomain.User](db).FindOne(ctx, &accountdomain.User{ID: id})
}

func (r *repo) InsertPaymentMethod(ctx context.Context, db *gorm.DB, method *accountdomain.PaymentMethod) error {
	return pkgrepository.ProvideStore[accountdomain.PaymentMethod](db).Create(ctx, method)
}

func (r *repo) FindPaymentMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*accountdomain.PaymentMethod, error) {
	return pkgrepository.ProvideStore[accountdomain.PaymentMethod](db).FindOne(ctx, &accountdomain.PaymentMethod{ID: id})
}
