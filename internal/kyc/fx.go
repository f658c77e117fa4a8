package kyc

import (
	"github.com/vitalislabs/vitalis/internal/kyc/service"
	"go.uber.org/fx"
)

var Module = fx.Module("kyc.service",
	fx.Provide(service.NewService),
)
