package customer

import (
	"github.com/shopstack/shopbill/internal/customer/repository"
	"github.com/shopstack/shopbill/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
