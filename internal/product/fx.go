package product

import (
	"github.com/shopstack/shopbill/internal/product/repository"
	"github.com/shopstack/shopbill/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
