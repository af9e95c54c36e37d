package purchaseorder

import (
	"github.com/shopstack/shopbill/internal/purchaseorder/repository"
	"github.com/shopstack/shopbill/internal/purchaseorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchaseorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
