package assignments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for daily assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.DailyAssignment, error)
	FindByDateVan(ctx context.Context, date time.Time, vanID uuid.UUID) (*models.DailyAssignment, error)
	FindByDateDriver(ctx context.Context, date time.Time, driverID uuid.UUID) (*models.DailyAssignment, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.DailyAssignment, error)
	Create(ctx context.Context, assignment *models.DailyAssignment) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	AvailableVans(ctx context.Context, date time.Time, q string) ([]models.Van, error)
	AvailableDrivers(ctx context.Context, date time.Time, q string) ([]models.Driver, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an assignment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DailyAssignment, error) {
	var assignment models.DailyAssignment
	if err := r.db.WithContext(ctx).
		Preload("Van").
		Preload("Driver").
		First(&assignment, "daily_assignments.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindByDateVan(ctx context.Context, date time.Time, vanID uuid.UUID) (*models.DailyAssignment, error) {
	var assignment models.DailyAssignment
	if err := r.db.WithContext(ctx).
		Preload("Van").
		Preload("Driver").
		First(&assignment, "assignment_date = ? AND van_id = ?", date, vanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindByDateDriver(ctx context.Context, date time.Time, driverID uuid.UUID) (*models.DailyAssignment, error) {
	var assignment models.DailyAssignment
	if err := r.db.WithContext(ctx).
		Preload("Van").
		Preload("Driver").
		First(&assignment, "assignment_date = ? AND driver_id = ?", date, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) ListRange(ctx context.Context, from, to time.Time) ([]models.DailyAssignment, error) {
	var rows []models.DailyAssignment
	if err := r.db.WithContext(ctx).
		Preload("Van").
		Preload("Driver").
		Joins("JOIN vans ON vans.id = daily_assignments.van_id").
		Where("assignment_date >= ? AND assignment_date <= ?", from, to).
		Order("assignment_date ASC, vans.code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Create(ctx context.Context, assignment *models.DailyAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	return r.db.WithContext(ctx).
		Model(&models.DailyAssignment{}).
		Where("id = ?", id).
		Update("notes", notes).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DailyAssignment{}, "id = ?", id).Error
}

func (r *repository) AvailableVans(ctx context.Context, date time.Time, q string) ([]models.Van, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", r.db.
			Model(&models.DailyAssignment{}).
			Select("van_id").
			Where("assignment_date = ?", date)).
		Order("code ASC")
	if strings.TrimSpace(q) != "" {
		pattern := "%" + strings.TrimSpace(q) + "%"
		query = query.Where("code LIKE ? OR description LIKE ?", pattern, pattern)
	}
	var rows []models.Van
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) AvailableDrivers(ctx context.Context, date time.Time, q string) ([]models.Driver, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", r.db.
			Model(&models.DailyAssignment{}).
			Select("driver_id").
			Where("assignment_date = ?", date)).
		Order("name ASC")
	if strings.TrimSpace(q) != "" {
		pattern := "%" + strings.TrimSpace(q) + "%"
		query = query.Where("employee_id LIKE ? OR name LIKE ?", pattern, pattern)
	}
	var rows []models.Driver
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
