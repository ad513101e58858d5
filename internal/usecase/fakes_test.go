package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/budget-tracker-api/internal/config"
	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
	"github.com/vasapolrittideah/budget-tracker-api/internal/repository"
)

// --- in-memory repository fakes ---

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[bson.ObjectID]*model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, duplicateKeyError()
		}
	}

	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id bson.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) UpdateUser(
	_ context.Context,
	id bson.ObjectID,
	params repository.UpdateUserParams,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Verified != nil {
		user.Verified = *params.Verified
	}
	user.UpdatedAt = time.Now().UTC()

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.users, id)
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens []*model.ConfirmationToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{}
}

func (r *fakeTokenRepo) CreateToken(
	_ context.Context,
	token *model.ConfirmationToken,
) (*model.ConfirmationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.Token == token.Token {
			return nil, duplicateKeyError()
		}
	}

	token.ID = bson.NewObjectID()
	r.tokens = append(r.tokens, token)
	return token, nil
}

func (r *fakeTokenRepo) GetTokenByValue(_ context.Context, value string) (*model.ConfirmationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.Token == value {
			copied := *t
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeTokenRepo) ConfirmToken(_ context.Context, value string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.Token == value && t.ConfirmedAt == nil {
			confirmedAt := at
			t.ConfirmedAt = &confirmedAt
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTokenRepo) CountTokensCreatedSince(
	_ context.Context,
	userID bson.ObjectID,
	since time.Time,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, t := range r.tokens {
		if t.UserID == userID && !t.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTokenRepo) DeleteTokensByUserID(_ context.Context, userID bson.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []*model.ConfirmationToken
	var deleted int64
	for _, t := range r.tokens {
		if t.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	r.tokens = kept
	return deleted, nil
}

func (r *fakeTokenRepo) tokensForUser(userID bson.ObjectID) []*model.ConfirmationToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.ConfirmationToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[bson.ObjectID]*model.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[bson.ObjectID]*model.Account)}
}

func (r *fakeAccountRepo) CreateAccount(_ context.Context, account *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.ID = bson.NewObjectID()
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = account
	return account, nil
}

func (r *fakeAccountRepo) ListAccountsByUserID(_ context.Context, userID bson.ObjectID) ([]model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Account
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) DeleteAccount(_ context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, id)
	return nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[bson.ObjectID]*model.AccountMember
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[bson.ObjectID]*model.AccountMember)}
}

func (r *fakeMemberRepo) CreateMember(_ context.Context, member *model.AccountMember) (*model.AccountMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member.ID = bson.NewObjectID()
	member.CreatedAt = time.Now().UTC()
	r.members[member.ID] = member
	return member, nil
}

func (r *fakeMemberRepo) DeleteMembersByAccountID(_ context.Context, accountID bson.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, m := range r.members {
		if m.AccountID == accountID {
			delete(r.members, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeMemberRepo) DeleteMembersByUserID(_ context.Context, userID bson.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, m := range r.members {
		if m.UserID == userID {
			delete(r.members, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[bson.ObjectID]*model.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[bson.ObjectID]*model.Transaction)}
}

func (r *fakeTransactionRepo) CreateTransaction(
	_ context.Context,
	transaction *model.Transaction,
) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	transaction.ID = bson.NewObjectID()
	transaction.CreatedAt = time.Now().UTC()
	r.transactions[transaction.ID] = transaction
	return transaction, nil
}

func (r *fakeTransactionRepo) ListTransactionsByAccountID(
	_ context.Context,
	accountID bson.ObjectID,
) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Transaction
	for _, t := range r.transactions {
		if t.AccountID == accountID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) DeleteTransactionsByAccountID(
	_ context.Context,
	accountID bson.ObjectID,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, t := range r.transactions {
		if t.AccountID == accountID {
			delete(r.transactions, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeTransactor runs the function directly; the fakes have no transaction
// semantics to speak of.
type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type sentEmail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendHTML(to []string, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// --- shared test fixture ---

type fixture struct {
	users        *fakeUserRepo
	tokens       *fakeTokenRepo
	accounts     *fakeAccountRepo
	members      *fakeMemberRepo
	transactions *fakeTransactionRepo
	mailer       *fakeMailer
	cfg          *config.Config
	logger       zerolog.Logger
}

func newFixture() *fixture {
	return &fixture{
		users:        newFakeUserRepo(),
		tokens:       newFakeTokenRepo(),
		accounts:     newFakeAccountRepo(),
		members:      newFakeMemberRepo(),
		transactions: newFakeTransactionRepo(),
		mailer:       &fakeMailer{},
		cfg: &config.Config{
			ConfirmationURL:      "http://localhost:8080/api/v1/auth/confirm",
			ConfirmationTokenTTL: 15 * time.Minute,
			ResendThrottleWindow: 10 * time.Minute,
			Token: config.TokenConfig{
				Secret:    "test-secret",
				Issuer:    "budget-tracker-api",
				Audience:  "budget-tracker-api",
				ExpiresIn: time.Hour,
			},
		},
		logger: zerolog.Nop(),
	}
}

func (f *fixture) confirmationUsecase() *confirmationUsecase {
	uc := NewConfirmationUsecase(f.users, f.tokens, fakeTransactor{}, f.mailer, f.cfg, &f.logger)
	return uc.(*confirmationUsecase)
}
