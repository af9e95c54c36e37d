package admin

import (
	"go.uber.org/fx"

	"github.com/shopstack/shopbill/internal/admin/repository"
	"github.com/shopstack/shopbill/internal/admin/service"
)

var Module = fx.Module("admin.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
