package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/shopstack/shopbill/internal/admin/domain"
	"github.com/shopstack/shopbill/internal/admin/repository"
	verificationdomain "github.com/shopstack/shopbill/internal/verification/domain"
	verificationrepo "github.com/shopstack/shopbill/internal/verification/repository"
)

type Params struct {
	fx.In

	Log              *zap.Logger
	Repo             repository.Repository
	VerificationRepo verificationrepo.Repository
}

type Service struct {
	log              *zap.Logger
	repo             repository.Repository
	verificationRepo verificationrepo.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:              p.Log.Named("admin.service"),
		repo:             p.Repo,
		verificationRepo: p.VerificationRepo,
	}
}

func (s *Service) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	totalShops, err := s.repo.CountShops(ctx, false)
	if err != nil {
		return nil, err
	}

	activeShops, err := s.repo.CountShops(ctx, true)
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.verificationRepo.CountByStatus(ctx, verificationdomain.StatusPending)
	if err != nil {
		return nil, err
	}

	revenue, err := s.verificationRepo.SumVerified(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.PlatformStats{
		TotalShops:           totalShops,
		ActiveShops:          activeShops,
		TotalUsers:           totalUsers,
		PendingVerifications: pending,
		TotalRevenue:         revenue,
	}, nil
}
