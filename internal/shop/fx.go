package shop

import (
	"github.com/shopstack/shopbill/internal/shop/repository"
	"github.com/shopstack/shopbill/internal/shop/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shop.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
