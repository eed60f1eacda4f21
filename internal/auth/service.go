package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/internal/users"
	"github.com/fleetworks/vanlist-backend/pkg/auth"
	"github.com/fleetworks/vanlist-backend/pkg/config"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/fleetworks/vanlist-backend/pkg/logger"
	"github.com/fleetworks/vanlist-backend/pkg/security"
	"gorm.io/gorm"
)

const minPasswordLength = 6

const invalidCredentialsMessage = "invalid username or password"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LoginResult carries the minted token alongside the authenticated account.
type LoginResult struct {
	Token string
	User  *users.UserDTO
}

// Service authenticates accounts and manages their own credentials.
type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, actor audit.Actor, currentPassword, newPassword string) error
}

type service struct {
	users       users.Repository
	tx          txRunner
	audit       audit.Service
	logg        *logger.Logger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService wires the authentication service.
func NewService(userRepo users.Repository, tx txRunner, auditSvc audit.Service, logg *logger.Logger, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		users:       userRepo,
		tx:          tx,
		audit:       auditSvc,
		logg:        logg,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// Login verifies the credentials and mints an access token. The rejection
// message never reveals whether the username exists. Failed attempts against
// known accounts leave a trail entry; unknown usernames do not, so the log
// cannot be used to probe for valid accounts.
func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up account")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if !user.IsActive {
		s.recordFailure(ctx, user.Username, "login rejected for deactivated account")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		s.recordFailure(ctx, user.Username, "invalid password")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		if err := repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp last login")
		}
		actor := audit.Actor{ID: user.ID, Username: user.Username, Role: user.Role}
		input := actor.RecordFor(enums.AuditActionLogin, enums.EntityUser, user.ID, "")
		if _, err := s.audit.Record(ctx, tx, input); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit login")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	loggedIn := *user
	loggedIn.LastLoginAt = &now
	return &LoginResult{Token: token, User: users.FromModel(&loggedIn)}, nil
}

// ChangePassword lets an authenticated account rotate its own credential.
func (s *service) ChangePassword(ctx context.Context, actor audit.Actor, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	ok, err := security.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		if err := repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
		}
		input := actor.RecordFor(enums.AuditActionUpdate, enums.EntityUser, user.ID, "changed own password")
		if _, err := s.audit.Record(ctx, tx, input); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "audit password change")
		}
		return nil
	})
}

// recordFailure writes the login-failure entry outside any transaction so the
// trail survives regardless of the rejected request.
func (s *service) recordFailure(ctx context.Context, username, detail string) {
	input := audit.RecordInput{
		ActorUsername: username,
		Action:        enums.AuditActionLoginFailure,
		Details:       &detail,
	}
	// Trail write failures must not mask the authentication outcome.
	if _, err := s.audit.Record(ctx, nil, input); err != nil {
		s.logg.Error(ctx, "auth.audit", err)
	}
}
