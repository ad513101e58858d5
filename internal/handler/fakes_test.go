package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
	"github.com/vasapolrittideah/budget-tracker-api/internal/usecase"
	"github.com/vasapolrittideah/budget-tracker-api/shared/auth"
	"github.com/vasapolrittideah/budget-tracker-api/shared/validation"
)

const testSecret = "handler-test-secret"

type fakeAuthUsecase struct {
	registerErr  error
	loginToken   string
	loginErr     error
	refreshToken string
	refreshErr   error

	refreshedFor string
}

func (f *fakeAuthUsecase) Register(context.Context, usecase.RegisterParams) error {
	return f.registerErr
}

func (f *fakeAuthUsecase) Login(context.Context, usecase.LoginParams) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeAuthUsecase) RefreshSessionToken(_ context.Context, email string) (string, error) {
	f.refreshedFor = email
	return f.refreshToken, f.refreshErr
}

type fakeConfirmationUsecase struct {
	confirmErr error
	resendErr  error

	confirmedToken string
}

func (f *fakeConfirmationUsecase) IssueToken(context.Context, bson.ObjectID) (*model.ConfirmationToken, error) {
	return &model.ConfirmationToken{}, nil
}

func (f *fakeConfirmationUsecase) ConfirmEmail(_ context.Context, tokenValue string) error {
	f.confirmedToken = tokenValue
	return f.confirmErr
}

func (f *fakeConfirmationUsecase) ResendConfirmation(context.Context, string, string) error {
	return f.resendErr
}

func (f *fakeConfirmationUsecase) SendConfirmationEmail(string, string) error {
	return nil
}

type fakeUserUsecase struct {
	user      *model.User
	getErr    error
	deleteErr error
	changeErr error
	resetErr  error

	deletedEmail    string
	changedPassword string
}

func (f *fakeUserUsecase) GetUser(context.Context, string) (*model.User, error) {
	return f.user, f.getErr
}

func (f *fakeUserUsecase) DeleteUser(_ context.Context, email string) error {
	f.deletedEmail = email
	return f.deleteErr
}

func (f *fakeUserUsecase) ChangePassword(_ context.Context, _, newPassword string) error {
	f.changedPassword = newPassword
	return f.changeErr
}

func (f *fakeUserUsecase) ResetPassword(context.Context, string) error {
	return f.resetErr
}

type testServer struct {
	router  http.Handler
	jwtAuth auth.JWTAuthenticator

	auth         *fakeAuthUsecase
	confirmation *fakeConfirmationUsecase
	users        *fakeUserUsecase
}

func newTestServer() *testServer {
	s := &testServer{
		jwtAuth:      auth.NewJWTAuthenticator("budget-tracker-api", "budget-tracker-api"),
		auth:         &fakeAuthUsecase{},
		confirmation: &fakeConfirmationUsecase{},
		users:        &fakeUserUsecase{},
	}

	validator, err := validation.NewValidator()
	if err != nil {
		panic(err)
	}

	logger := zerolog.Nop()
	authHandler := NewAuthHandler(s.auth, s.confirmation, validator, &logger)
	userHandler := NewUserHandler(s.users, validator, &logger)

	s.router = NewRouter(authHandler, userHandler, RequireAuth(s.jwtAuth, testSecret))
	return s
}
