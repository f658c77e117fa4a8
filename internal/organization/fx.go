package organization

import (
	"github.com/vitalislabs/vitalis/internal/organization/repository"
	"github.com/vitalislabs/vitalis/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
