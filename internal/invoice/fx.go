package invoice

import (
	"github.com/shopstack/shopbill/internal/invoice/repository"
	"github.com/shopstack/shopbill/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
