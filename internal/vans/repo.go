package vans

import (
	"context"
	"errors"
	"strings"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for vans.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Van, error)
	FindByCode(ctx context.Context, code string) (*models.Van, error)
	List(ctx context.Context, activeOnly bool) ([]models.Van, error)
	Search(ctx context.Context, q string) ([]models.Van, error)
	Create(ctx context.Context, van *models.Van) error
	Update(ctx context.Context, van *models.Van) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a van repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Van, error) {
	var van models.Van
	if err := r.db.WithContext(ctx).First(&van, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &van, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Van, error) {
	var van models.Van
	if err := r.db.WithContext(ctx).First(&van, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &van, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Van, error) {
	query := r.db.WithContext(ctx).Order("code ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Van
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Search(ctx context.Context, q string) ([]models.Van, error) {
	pattern := "%" + strings.TrimSpace(q) + "%"
	var rows []models.Van
	if err := r.db.WithContext(ctx).
		Where("code LIKE ? OR description LIKE ?", pattern, pattern).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Create(ctx context.Context, van *models.Van) error {
	return r.db.WithContext(ctx).Create(van).Error
}

func (r *repository) Update(ctx context.Context, van *models.Van) error {
	return r.db.WithContext(ctx).Save(van).Error
}
