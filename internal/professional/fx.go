package professional

import (
	"github.com/vitalislabs/vitalis/internal/professional/repository"
	"github.com/vitalislabs/vitalis/internal/professional/service"
	"go.uber.org/fx"
)

var Module = fx.Module("professional.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
