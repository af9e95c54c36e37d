package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CountShops(ctx context.Context, activeOnly bool) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) CountShops(ctx context.Context, activeOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).Table("shops")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("users").Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
