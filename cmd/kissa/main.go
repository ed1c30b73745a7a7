package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/account"
	"github.com/tuanemuy/kissa/internal/authorization"
	"github.com/tuanemuy/kissa/internal/billing"
	"github.com/tuanemuy/kissa/internal/clock"
	"github.com/tuanemuy/kissa/internal/config"
	"github.com/tuanemuy/kissa/internal/entitlement"
	"github.com/tuanemuy/kissa/internal/logger"
	"github.com/tuanemuy/kissa/internal/migration"
	"github.com/tuanemuy/kissa/internal/observability/metrics"
	"github.com/tuanemuy/kissa/internal/plan"
	"github.com/tuanemuy/kissa/internal/subscription"
	"github.com/tuanemuy/kissa/internal/usage"
	"github.com/tuanemuy/kissa/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/tuanemuy/kissa/internal/billing/domain"
	entitlementdomain "github.com/tuanemuy/kissa/internal/entitlement/domain"
	subscriptiondomain "github.com/tuanemuy/kissa/internal/subscription/domain"
	usagedomain "github.com/tuanemuy/kissa/internal/usage/domain"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		account.Module,
		authorization.Module,
		plan.Module,
		subscription.Module,
		billing.Module,
		usage.Module,
		entitlement.Module,

		fx.Invoke(func(
			log *zap.Logger,
			_ subscriptiondomain.Service,
			_ billingdomain.Service,
			_ usagedomain.Service,
			_ entitlementdomain.Service,
		) {
			log.Info("kissa core services initialized")
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
