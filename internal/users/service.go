package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/pkg/config"
	"github.com/fleetworks/vanlist-backend/pkg/db"
	"github.com/fleetworks/vanlist-backend/pkg/db/models"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the admin user-management surface.
type Service interface {
	List(ctx context.Context) ([]UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Create(ctx context.Context, actor audit.Actor, input CreateUserInput) (*UserDTO, error)
	Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	SeedDefaultAdmin(ctx context.Context, adminCfg config.AdminConfig) error
}

// CreateUserInput captures a new account.
type CreateUserInput struct {
	Username string
	Password string
	Role     enums.Role
}

// UpdateUserInput captures the mutable account fields; nil means unchanged.
type UpdateUserInput struct {
	Role     *enums.Role
	IsActive *bool
	Password *string
}

type service struct {
	repo        Repository
	tx          txRunner
	audit       audit.Service
	passwordCfg config.PasswordConfig
}

// NewService wires the user service with its repository and audit trail.
func NewService(repo Repository, tx txRunner, auditSvc audit.Service, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, tx: tx, audit: auditSvc, passwordCfg: passwordCfg}, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, actor audit.Actor, input CreateUserInput) (*UserDTO, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var dto *UserDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByUsername(ctx, username)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("username %q is already taken", username))
		}

		user := &models.User{
			Username:     username,
			PasswordHash: hash,
			Role:         input.Role,
			IsActive:     true,
		}
		if err := repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("username %q is already taken", username))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		detail := fmt.Sprintf("created user %s with role %s", user.Username, user.Role)
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionCreate, enums.EntityUser, user.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit user create")
		}

		dto = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", *input.Role))
	}
	if input.Password != nil && len(*input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var dto *UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}

		var changes []string
		if input.Role != nil && *input.Role != user.Role {
			changes = append(changes, fmt.Sprintf("role %s to %s", user.Role, *input.Role))
			user.Role = *input.Role
		}
		if input.IsActive != nil && *input.IsActive != user.IsActive {
			state := "deactivated"
			if *input.IsActive {
				state = "activated"
			}
			changes = append(changes, state)
			user.IsActive = *input.IsActive
		}
		if err := repo.Update(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}

		if input.Password != nil {
			hash, err := security.HashPassword(*input.Password, s.passwordCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			if err := repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
			}
			changes = append(changes, "password reset")
		}

		detail := fmt.Sprintf("updated user %s", user.Username)
		if len(changes) > 0 {
			detail = fmt.Sprintf("updated user %s: %s", user.Username, strings.Join(changes, "; "))
		}
		if _, err := s.audit.Record(ctx, tx, actor.RecordFor(enums.AuditActionUpdate, enums.EntityUser, user.ID, detail)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit user update")
		}

		dto = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SeedDefaultAdmin creates the configured admin account when it does not
// exist yet. Called on startup; a second boot is a no-op.
func (s *service) SeedDefaultAdmin(ctx context.Context, adminCfg config.AdminConfig) error {
	username := strings.TrimSpace(adminCfg.DefaultUsername)
	if username == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "default admin username is required")
	}
	if len(adminCfg.DefaultPassword) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "default admin password is required")
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check default admin")
	}
	if existing != nil {
		return nil
	}

	hash, err := security.HashPassword(adminCfg.DefaultPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash default admin password")
	}

	err = s.repo.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         enums.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		// A concurrent boot may have seeded it first.
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed default admin")
	}
	return nil
}
