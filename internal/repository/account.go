package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
)

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	ListAccountsByUserID(ctx context.Context, userID bson.ObjectID) ([]model.Account, error)
	DeleteAccount(ctx context.Context, id bson.ObjectID) error
}

const accountCollection = "accounts"

type accountMongoRepository struct {
	db *mongo.Database
}

func NewAccountMongoRepository(db *mongo.Database) AccountRepository {
	return &accountMongoRepository{db: db}
}

func (r *accountMongoRepository) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := r.db.Collection(accountCollection).InsertOne(ctx, account)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return account, nil
}

func (r *accountMongoRepository) ListAccountsByUserID(
	ctx context.Context,
	userID bson.ObjectID,
) ([]model.Account, error) {
	cursor, err := r.db.Collection(accountCollection).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var accounts []model.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *accountMongoRepository) DeleteAccount(ctx context.Context, id bson.ObjectID) error {
	_, err := r.db.Collection(accountCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}
