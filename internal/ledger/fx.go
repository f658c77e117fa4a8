package ledger

import (
	"github.com/vitalislabs/vitalis/internal/ledger/repository"
	"github.com/vitalislabs/vitalis/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
