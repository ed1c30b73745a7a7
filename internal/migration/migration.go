package migration

import (
	accountdomain "github.com/tuanemuy/kissa/internal/account/domain"
	billingdomain "github.com/tuanemuy/kissa/internal/billing/domain"
	subscriptiondomain "github.com/tuanemuy/kissa/internal/subscription/domain"
	usagedomain "github.com/tuanemuy/kissa/internal/usage/domain"
	"gorm.io/gorm"
)

// Run creates or updates every table on startup so the service is
// usable out of the box for local and self-hosted environments.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&accountdomain.User{},
		&accountdomain.PaymentMethod{},
		&subscriptiondomain.Subscription{},
		&billingdomain.BillingRecord{},
		&usagedomain.Entry{},
	)
}
