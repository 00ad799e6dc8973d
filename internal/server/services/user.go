package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"docvault/internal/common"
	"docvault/internal/logging"
	"docvault/internal/server/auth"
	"docvault/internal/server/config"
	"docvault/internal/server/models"
	"docvault/internal/server/repositories/repomanager"
)

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		logger:                      logger.With("module", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new account. The password is hashed with bcrypt
// here, at the boundary; nothing downstream ever sees the plaintext.
func (s *UserService) Register(ctx context.Context, fullName, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
	}

	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.audit(ctx, common.AuditActionRegister, user.ID, email, common.AuditStatusSuccess)
	return user, nil
}

// Login verifies the credentials and issues an access token. Unknown
// email and wrong password produce the same error so the endpoint does
// not reveal which accounts exist.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.audit(ctx, common.AuditActionLogin, user.ID, email, common.AuditStatusFailure)
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}

	s.audit(ctx, common.AuditActionLogin, user.ID, email, common.AuditStatusSuccess)
	return token, user, nil
}

func (s *UserService) audit(ctx context.Context, action, actorID, resource, status string) {
	entry := &models.AuditEntry{
		Action:    action,
		ActorID:   actorID,
		Resource:  resource,
		IPAddress: common.ClientIP(ctx),
		Status:    status,
	}
	if err := s.repomanager.Audit(s.db).Insert(ctx, entry); err != nil {
		s.logger.Warn(ctx, "audit write failed", "action", action, "err", err)
	}
}
