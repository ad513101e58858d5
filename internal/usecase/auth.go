package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/budget-tracker-api/internal/config"
	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
	"github.com/vasapolrittideah/budget-tracker-api/internal/repository"
	"github.com/vasapolrittideah/budget-tracker-api/shared/auth"
	"github.com/vasapolrittideah/budget-tracker-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	// Register creates the user, a confirmation token, and the default
	// account with its membership as one atomic unit, then emails the
	// confirmation link best effort after commit.
	Register(ctx context.Context, params RegisterParams) error

	// Login verifies credentials and the verified flag and returns a session token.
	Login(ctx context.Context, params LoginParams) (string, error)

	// RefreshSessionToken issues a fresh session token for an authenticated
	// principal, re-checking the verified flag against the store.
	RefreshSessionToken(ctx context.Context, email string) (string, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrUserNotFound       = errors.New("user not found")
)

const defaultAccountName = "My wallet"

type authUsecase struct {
	userRepo     repository.UserRepository
	accountRepo  repository.AccountRepository
	memberRepo   repository.AccountMemberRepository
	confirmation ConfirmationUsecase
	transactor   repository.Transactor
	jwtAuth      auth.JWTAuthenticator
	cfg          *config.Config
	logger       *zerolog.Logger
	now          func() time.Time
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	memberRepo repository.AccountMemberRepository,
	confirmation ConfirmationUsecase,
	transactor repository.Transactor,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:     userRepo,
		accountRepo:  accountRepo,
		memberRepo:   memberRepo,
		confirmation: confirmation,
		transactor:   transactor,
		jwtAuth:      jwtAuth,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) error {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	var tokenValue string

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.CreateUser(ctx, &model.User{
			Email:        params.Email,
			PasswordHash: passwordHash,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrUserAlreadyExists
			}
			return err
		}

		token, err := u.confirmation.IssueToken(ctx, user.ID)
		if err != nil {
			return err
		}
		tokenValue = token.Token

		account, err := u.accountRepo.CreateAccount(ctx, &model.Account{
			UserID: user.ID,
			Name:   defaultAccountName,
		})
		if err != nil {
			return err
		}

		if _, err := u.memberRepo.CreateMember(ctx, &model.AccountMember{
			AccountID: account.ID,
			UserID:    user.ID,
		}); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	// The email goes out only after the transaction committed, so a rolled
	// back registration never produces a confirmation email. A failed send is
	// recoverable through the resend endpoint.
	if err := u.confirmation.SendConfirmationEmail(params.Email, tokenValue); err != nil {
		u.logger.Error().Err(err).Str("email", params.Email).Msg("failed to send confirmation email")
	}

	return nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return "", err
	} else if !ok {
		return "", ErrInvalidCredentials
	}

	if !user.Verified {
		return "", ErrEmailNotVerified
	}

	return u.jwtAuth.GenerateSessionToken(user.Email, u.cfg.Token.Secret, u.cfg.Token.ExpiresIn)
}

func (u *authUsecase) RefreshSessionToken(ctx context.Context, email string) (string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	// Verification status is re-checked on every refresh, never trusted from
	// the old token.
	if !user.Verified {
		return "", ErrEmailNotVerified
	}

	return u.jwtAuth.GenerateSessionToken(user.Email, u.cfg.Token.Secret, u.cfg.Token.ExpiresIn)
}
