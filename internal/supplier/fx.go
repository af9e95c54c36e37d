package supplier

import (
	"github.com/shopstack/shopbill/internal/supplier/domain"
	"github.com/shopstack/shopbill/internal/supplier/service"
	"github.com/shopstack/shopbill/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("supplier.service",
	fx.Provide(repository.ProvideStore[domain.Supplier]),
	fx.Provide(service.New),
)
