package expense

import (
	"github.com/shopstack/shopbill/internal/expense/domain"
	"github.com/shopstack/shopbill/internal/expense/service"
	"github.com/shopstack/shopbill/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(repository.ProvideStore[domain.Expense]),
	fx.Provide(service.New),
)
