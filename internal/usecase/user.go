package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/budget-tracker-api/internal/config"
	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
	"github.com/vasapolrittideah/budget-tracker-api/internal/repository"
	"github.com/vasapolrittideah/budget-tracker-api/shared/security"
)

// UserUsecase defines the interface for user-related use cases. Every
// operation takes the caller's email as an explicit principal; nothing reads
// ambient authentication state.
type UserUsecase interface {
	GetUser(ctx context.Context, email string) (*model.User, error)
	DeleteUser(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, email, newPassword string) error
	ResetPassword(ctx context.Context, email string) error
}

const (
	newPasswordEmailSubject = "New password"
	generatedPasswordLength = 10
)

type userUsecase struct {
	userRepo        repository.UserRepository
	tokenRepo       repository.ConfirmationTokenRepository
	accountRepo     repository.AccountRepository
	memberRepo      repository.AccountMemberRepository
	transactionRepo repository.TransactionRepository
	transactor      repository.Transactor
	mailer          EmailSender
	cfg             *config.Config
	logger          *zerolog.Logger
}

// NewUserUsecase creates a new instance of UserUsecase.
func NewUserUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.ConfirmationTokenRepository,
	accountRepo repository.AccountRepository,
	memberRepo repository.AccountMemberRepository,
	transactionRepo repository.TransactionRepository,
	transactor repository.Transactor,
	mailer EmailSender,
	cfg *config.Config,
	logger *zerolog.Logger,
) UserUsecase {
	return &userUsecase{
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		accountRepo:     accountRepo,
		memberRepo:      memberRepo,
		transactionRepo: transactionRepo,
		transactor:      transactor,
		mailer:          mailer,
		cfg:             cfg,
		logger:          logger,
	}
}

func (u *userUsecase) GetUser(ctx context.Context, email string) (*model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.Verified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// DeleteUser removes the user and everything that references them. The order
// matters: dependent rows reference the parent by id, so each dependent
// collection is cleared before its parent row is removed.
func (u *userUsecase) DeleteUser(ctx context.Context, email string) error {
	user, err := u.GetUser(ctx, email)
	if err != nil {
		return err
	}

	return u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.tokenRepo.DeleteTokensByUserID(ctx, user.ID); err != nil {
			return err
		}

		accounts, err := u.accountRepo.ListAccountsByUserID(ctx, user.ID)
		if err != nil {
			return err
		}

		for _, account := range accounts {
			if _, err := u.transactionRepo.DeleteTransactionsByAccountID(ctx, account.ID); err != nil {
				return err
			}
			if _, err := u.memberRepo.DeleteMembersByAccountID(ctx, account.ID); err != nil {
				return err
			}
			if err := u.accountRepo.DeleteAccount(ctx, account.ID); err != nil {
				return err
			}
		}

		// Memberships in other users' accounts.
		if _, err := u.memberRepo.DeleteMembersByUserID(ctx, user.ID); err != nil {
			return err
		}

		return u.userRepo.DeleteUser(ctx, user.ID)
	})
}

func (u *userUsecase) ChangePassword(ctx context.Context, email, newPassword string) error {
	user, err := u.GetUser(ctx, email)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	})
	return err
}

// ResetPassword replaces the user's password with a freshly generated one and
// emails it to them.
func (u *userUsecase) ResetPassword(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if !user.Verified {
		return ErrEmailNotVerified
	}

	newPassword, err := security.GeneratePassword(generatedPasswordLength)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Your password has been reset. Here is your new password:</p>

		<p><b>%s</b></p>

		<p>For security reasons, please change your password after logging in.</p>
		<p>Budget Tracker Team</p>
	`, newPassword)

	return u.mailer.SendHTML([]string{user.Email}, newPasswordEmailSubject, htmlBody)
}
