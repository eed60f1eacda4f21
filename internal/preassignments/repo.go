package preassignments

import (
	"context"
	"errors"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for driver-to-van preassignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.DriverVanPreassignment, error)
	FindByDriver(ctx context.Context, driverID uuid.UUID) (*models.DriverVanPreassignment, error)
	List(ctx context.Context) ([]models.DriverVanPreassignment, error)
	Create(ctx context.Context, row *models.DriverVanPreassignment) error
	UpdateVan(ctx context.Context, id, vanID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a preassignment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DriverVanPreassignment, error) {
	var row models.DriverVanPreassignment
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Van").
		First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByDriver(ctx context.Context, driverID uuid.UUID) (*models.DriverVanPreassignment, error) {
	var row models.DriverVanPreassignment
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Van").
		First(&row, "driver_id = ?", driverID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context) ([]models.DriverVanPreassignment, error) {
	var rows []models.DriverVanPreassignment
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Van").
		Joins("JOIN drivers ON drivers.id = driver_van_preassignments.driver_id").
		Order("drivers.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Create(ctx context.Context, row *models.DriverVanPreassignment) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) UpdateVan(ctx context.Context, id, vanID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.DriverVanPreassignment{}).
		Where("id = ?", id).
		Update("van_id", vanID).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DriverVanPreassignment{}, "id = ?", id).Error
}
