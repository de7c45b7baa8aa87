// Package services contains the server-side business logic. AuthService
// composes the credential hasher, token issuer/verifier and repositories for
// the register, login, self, refresh-rotation and logout flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osavchuk/authsvc/internal/common"
	"github.com/osavchuk/authsvc/internal/dbx"
	"github.com/osavchuk/authsvc/internal/logging"
	"github.com/osavchuk/authsvc/internal/server/models"
	"github.com/osavchuk/authsvc/internal/server/password"
	"github.com/osavchuk/authsvc/internal/server/repositories/repomanager"
	"github.com/osavchuk/authsvc/internal/server/token"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService provides authentication-related operations:
//   - Register: create an identity and mint tokens
//   - Login: verify credentials and mint tokens
//   - Self: fetch the already-authenticated identity
//   - Rotate: exchange a refresh token for a fresh pair
//   - Logout: revoke a refresh-token record
type AuthService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	hasher   *password.Hasher
	issuer   *token.Issuer
	verifier *token.Verifier
	logger   logging.Logger
}

// NewAuthService constructs an AuthService from its collaborators.
func NewAuthService(
	db *sql.DB,
	repos repomanager.RepositoryManager,
	hasher *password.Hasher,
	issuer *token.Issuer,
	verifier *token.Verifier,
	logger logging.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		repos:    repos,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		logger:   logger,
	}
}

// Register creates a new identity with the default role and issues a token
// pair. A taken email yields common.ErrorEmailExists.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, secret string) (*models.User, *TokenPair, error) {
	email = strings.TrimSpace(email)

	repo := s.repos.Users(s.db)
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, nil, common.ErrorEmailExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, nil, fmt.Errorf("error checking email: %w", err)
	}

	hashed, err := s.hasher.Hash(secret)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, nil, common.ErrorInternal
	}

	user, err := repo.Create(ctx, &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  hashed,
		Role:      models.RoleCustomer,
	})
	if err != nil {
		// a concurrent register may win the unique index race
		if errors.Is(err, common.ErrorEmailExists) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies the credentials and issues a token pair. An unknown email
// and a wrong password both return common.ErrorInvalidCredentials so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, secret string) (*models.User, *TokenPair, error) {
	email = strings.TrimSpace(email)

	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !s.hasher.Verify(secret, user.Password) {
		return nil, nil, common.ErrorInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Self returns the identity for an already-verified subject id.
func (s *AuthService) Self(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	return user, nil
}

// Rotate validates a refresh token against its persisted record, then
// atomically replaces the record and issues a fresh token pair. The old
// record id is unusable afterwards.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := s.verifier.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	recordID, err := claims.StoreRecordID()
	if err != nil {
		return nil, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, err
	}

	record, err := s.repos.RefreshTokens(s.db).FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if record.UserID != userID {
		return nil, nil, common.ErrorUnauthorized
	}
	if record.ExpiresAt.Before(time.Now()) {
		return nil, nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("error looking up user: %w", err)
	}

	// rotation must not survive a client hangup half-done
	persistCtx := context.WithoutCancel(ctx)

	var newRecord *models.RefreshToken
	err = dbx.WithTx(persistCtx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repos.RefreshTokens(tx)
		if err := repoTx.DeleteByID(ctx, record.ID); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var createErr error
		newRecord, createErr = repoTx.Create(ctx, user.ID, time.Now().Add(s.issuer.RefreshTTL()))
		return createErr
	})
	if err != nil {
		s.logger.Error(ctx, "refresh rotation failed", "error", err, "record_id", record.ID)
		return nil, nil, common.ErrorInternal
	}

	pair, err := s.signPair(ctx, user, newRecord.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the refresh-token record named by the token. Revoking a
// record that is already gone is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.verifier.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}

	recordID, err := claims.StoreRecordID()
	if err != nil {
		return err
	}

	err = s.repos.RefreshTokens(s.db).DeleteByID(context.WithoutCancel(ctx), recordID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// SweepExpired deletes refresh-token records that have already expired.
// Called periodically from the app loop so unused records do not accumulate
// forever.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	return s.repos.RefreshTokens(s.db).DeleteExpired(ctx, time.Now())
}

// issueTokenPair persists a new refresh record and signs both tokens. The
// record is created first so a refresh token can never reference a row that
// does not exist; persistence ignores caller cancellation so a disconnect
// cannot leave a half-issued session behind.
func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	record, err := s.repos.RefreshTokens(s.db).Create(
		context.WithoutCancel(ctx), user.ID, time.Now().Add(s.issuer.RefreshTTL()))
	if err != nil {
		s.logger.Error(ctx, "refresh token persistence failed", "error", err, "user_id", user.ID)
		return nil, common.ErrorInternal
	}

	return s.signPair(ctx, user, record.ID)
}

func (s *AuthService) signPair(ctx context.Context, user *models.User, recordID int64) (*TokenPair, error) {
	access, err := s.issuer.IssueAccess(user.ID, user.Role)
	if err != nil {
		s.logger.Error(ctx, "access token signing failed", "error", err)
		return nil, common.ErrorInternal
	}

	refresh, err := s.issuer.IssueRefresh(user.ID, user.Role, recordID)
	if err != nil {
		s.logger.Error(ctx, "refresh token signing failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
