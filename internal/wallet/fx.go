package wallet

import (
	"github.com/vitalislabs/vitalis/internal/wallet/repository"
	"github.com/vitalislabs/vitalis/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
