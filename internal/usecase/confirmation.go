package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/budget-tracker-api/internal/config"
	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
	"github.com/vasapolrittideah/budget-tracker-api/internal/repository"
	"github.com/vasapolrittideah/budget-tracker-api/shared/security"
)

// ConfirmationUsecase defines the business logic for the email confirmation
// token lifecycle.
type ConfirmationUsecase interface {
	// IssueToken creates a fresh confirmation token for the user. It only
	// writes the token; dispatching the email is the caller's responsibility.
	IssueToken(ctx context.Context, userID bson.ObjectID) (*model.ConfirmationToken, error)

	// ConfirmEmail consumes a token by its string value and marks the owning
	// user as verified.
	ConfirmEmail(ctx context.Context, tokenValue string) error

	// ResendConfirmation re-authenticates the caller and, unless a token was
	// already issued within the throttle window, issues and emails a new one.
	ResendConfirmation(ctx context.Context, email, password string) error

	// SendConfirmationEmail emails the confirmation link for the given token.
	SendConfirmationEmail(email, tokenValue string) error
}

var (
	ErrTokenNotFound           = errors.New("confirmation token not found")
	ErrTokenAlreadyConfirmed   = errors.New("confirmation token has already been confirmed")
	ErrTokenExpired            = errors.New("confirmation token has expired")
	ErrEmailAlreadyVerified    = errors.New("email is already verified")
	ErrConfirmationAlreadySent = errors.New("confirmation email is already sent")
)

// EmailSender dispatches notification emails. Satisfied by *mailer.Mailer.
type EmailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

const confirmationEmailSubject = "Confirm your email address"

type confirmationUsecase struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.ConfirmationTokenRepository
	transactor repository.Transactor
	mailer     EmailSender
	cfg        *config.Config
	logger     *zerolog.Logger
	now        func() time.Time
}

// NewConfirmationUsecase creates a new instance of ConfirmationUsecase.
func NewConfirmationUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.ConfirmationTokenRepository,
	transactor repository.Transactor,
	mailer EmailSender,
	cfg *config.Config,
	logger *zerolog.Logger,
) ConfirmationUsecase {
	return &confirmationUsecase{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		transactor: transactor,
		mailer:     mailer,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *confirmationUsecase) IssueToken(
	ctx context.Context,
	userID bson.ObjectID,
) (*model.ConfirmationToken, error) {
	now := u.now().UTC()

	// A v4 UUID carries 122 bits of randomness, enough to make the token
	// unguessable and collisions negligible.
	token := &model.ConfirmationToken{
		UserID:    userID,
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(u.cfg.ConfirmationTokenTTL),
	}

	return u.tokenRepo.CreateToken(ctx, token)
}

func (u *confirmationUsecase) ConfirmEmail(ctx context.Context, tokenValue string) error {
	token, err := u.tokenRepo.GetTokenByValue(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenNotFound
		}
		return err
	}

	// The already-confirmed check comes before the expiry check: a consumed
	// token that has since passed its expiry must still report already
	// confirmed, because the confirmation itself succeeded.
	if token.ConfirmedAt != nil {
		return ErrTokenAlreadyConfirmed
	}

	now := u.now().UTC()
	if !now.Before(token.ExpiresAt) {
		return ErrTokenExpired
	}

	return u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		confirmed, err := u.tokenRepo.ConfirmToken(ctx, tokenValue, now)
		if err != nil {
			return err
		}
		if !confirmed {
			// A concurrent request consumed the token between our read and
			// this conditional update.
			return ErrTokenAlreadyConfirmed
		}

		verified := true
		if _, err := u.userRepo.UpdateUser(ctx, token.UserID, repository.UpdateUserParams{
			Verified: &verified,
		}); err != nil {
			return err
		}

		return nil
	})
}

func (u *confirmationUsecase) ResendConfirmation(ctx context.Context, email, password string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidCredentials
		}
		return err
	}

	if ok, err := security.VerifyPassword(password, user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrInvalidCredentials
	}

	if user.Verified {
		return ErrEmailAlreadyVerified
	}

	since := u.now().UTC().Add(-u.cfg.ResendThrottleWindow)
	recent, err := u.tokenRepo.CountTokensCreatedSince(ctx, user.ID, since)
	if err != nil {
		return err
	}
	if recent > 0 {
		return ErrConfirmationAlreadySent
	}

	token, err := u.IssueToken(ctx, user.ID)
	if err != nil {
		return err
	}

	return u.SendConfirmationEmail(user.Email, token.Token)
}

func (u *confirmationUsecase) SendConfirmationEmail(email, tokenValue string) error {
	link := fmt.Sprintf("%s?token=%s", u.cfg.ConfirmationURL, tokenValue)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Thank you for registering. Please click on the link below to activate your account:</p>

		<p><a href="%s">Activate Now</a></p>

		<p>The link will expire in %s.</p>
		<p>See you soon,</p>
		<p>Budget Tracker Team</p>
	`, link, u.cfg.ConfirmationTokenTTL)

	return u.mailer.SendHTML([]string{email}, confirmationEmailSubject, htmlBody)
}
