package webhook

import (
	"github.com/vitalislabs/vitalis/internal/webhook/service"
	"go.uber.org/fx"
)

var Module = fx.Module("webhook.service",
	fx.Provide(service.NewService),
)
