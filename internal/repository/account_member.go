package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
)

// AccountMemberRepository defines the interface for account membership operations.
type AccountMemberRepository interface {
	CreateMember(ctx context.Context, member *model.AccountMember) (*model.AccountMember, error)
	DeleteMembersByAccountID(ctx context.Context, accountID bson.ObjectID) (int64, error)
	DeleteMembersByUserID(ctx context.Context, userID bson.ObjectID) (int64, error)
}

const accountMemberCollection = "account_members"

type accountMemberMongoRepository struct {
	db *mongo.Database
}

func NewAccountMemberMongoRepository(db *mongo.Database) AccountMemberRepository {
	return &accountMemberMongoRepository{db: db}
}

func (r *accountMemberMongoRepository) CreateMember(
	ctx context.Context,
	member *model.AccountMember,
) (*model.AccountMember, error) {
	member.CreatedAt = time.Now().UTC()

	result, err := r.db.Collection(accountMemberCollection).InsertOne(ctx, member)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		member.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return member, nil
}

func (r *accountMemberMongoRepository) DeleteMembersByAccountID(
	ctx context.Context,
	accountID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(accountMemberCollection).DeleteMany(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func (r *accountMemberMongoRepository) DeleteMembersByUserID(
	ctx context.Context,
	userID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(accountMemberCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
