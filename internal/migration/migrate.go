package migration

import (
	ledgerdomain "github.com/vitalislabs/vitalis/internal/ledger/domain"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	webhookdomain "github.com/vitalislabs/vitalis/internal/webhook/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run applies the schema for every persisted model.
func Run(db *gorm.DB, log *zap.Logger) error {
	log.Info("running migrations")
	return db.AutoMigrate(
		&orgdomain.Organization{},
		&orgdomain.SubscriptionPlan{},
		&profdomain.Professional{},
		&profdomain.RentalBilling{},
		&walletdomain.ClientWallet{},
		&ledgerdomain.FinancialTransaction{},
		&webhookdomain.WebhookEvent{},
	)
}
