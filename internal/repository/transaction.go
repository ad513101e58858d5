package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
)

// TransactionRepository defines the interface for transaction-related database operations.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, transaction *model.Transaction) (*model.Transaction, error)
	ListTransactionsByAccountID(ctx context.Context, accountID bson.ObjectID) ([]model.Transaction, error)
	DeleteTransactionsByAccountID(ctx context.Context, accountID bson.ObjectID) (int64, error)
}

const transactionCollection = "transactions"

type transactionMongoRepository struct {
	db *mongo.Database
}

func NewTransactionMongoRepository(db *mongo.Database) TransactionRepository {
	return &transactionMongoRepository{db: db}
}

func (r *transactionMongoRepository) CreateTransaction(
	ctx context.Context,
	transaction *model.Transaction,
) (*model.Transaction, error) {
	transaction.CreatedAt = time.Now().UTC()

	result, err := r.db.Collection(transactionCollection).InsertOne(ctx, transaction)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		transaction.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return transaction, nil
}

func (r *transactionMongoRepository) ListTransactionsByAccountID(
	ctx context.Context,
	accountID bson.ObjectID,
) ([]model.Transaction, error) {
	cursor, err := r.db.Collection(transactionCollection).Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *transactionMongoRepository) DeleteTransactionsByAccountID(
	ctx context.Context,
	accountID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(transactionCollection).DeleteMany(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
