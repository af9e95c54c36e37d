package verification

import (
	"github.com/shopstack/shopbill/internal/verification/repository"
	"github.com/shopstack/shopbill/internal/verification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("verification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
