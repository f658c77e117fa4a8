package checkout

import (
	"github.com/vitalislabs/vitalis/internal/checkout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("checkout.service",
	fx.Provide(service.NewService),
)
