package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/budget-tracker-api/internal/model"
)

// ConfirmationTokenRepository defines the interface for confirmation token operations.
type ConfirmationTokenRepository interface {
	// CreateToken persists a new confirmation token.
	CreateToken(ctx context.Context, token *model.ConfirmationToken) (*model.ConfirmationToken, error)

	// GetTokenByValue retrieves a token by its opaque string value.
	GetTokenByValue(ctx context.Context, value string) (*model.ConfirmationToken, error)

	// ConfirmToken sets confirmed_at on the token, but only if it has not been
	// confirmed yet. Returns false when another request already confirmed it.
	ConfirmToken(ctx context.Context, value string, at time.Time) (bool, error)

	// CountTokensCreatedSince counts tokens for a user created at or after the
	// given instant. Used by the resend throttle.
	CountTokensCreatedSince(ctx context.Context, userID bson.ObjectID, since time.Time) (int64, error)

	// DeleteTokensByUserID removes all tokens that belong to a user.
	DeleteTokensByUserID(ctx context.Context, userID bson.ObjectID) (int64, error)
}

const confirmationTokenCollection = "confirmation_tokens"

type confirmationTokenMongoRepository struct {
	db *mongo.Database
}

// NewConfirmationTokenMongoRepository creates a MongoDB repository for
// confirmation tokens and ensures its indexes exist.
func NewConfirmationTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) ConfirmationTokenRepository {
	collection := db.Collection(confirmationTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create confirmation token indexes")
	}

	return &confirmationTokenMongoRepository{db: db}
}

func (r *confirmationTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.ConfirmationToken,
) (*model.ConfirmationToken, error) {
	result, err := r.db.Collection(confirmationTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *confirmationTokenMongoRepository) GetTokenByValue(
	ctx context.Context,
	value string,
) (*model.ConfirmationToken, error) {
	var token model.ConfirmationToken
	err := r.db.Collection(confirmationTokenCollection).FindOne(ctx, bson.M{"token": value}).Decode(&token)
	if err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *confirmationTokenMongoRepository) ConfirmToken(
	ctx context.Context,
	value string,
	at time.Time,
) (bool, error) {
	// The confirmed_at == nil filter serializes concurrent confirmation
	// attempts on the same token: exactly one update matches.
	filter := bson.M{
		"token":        value,
		"confirmed_at": nil,
	}
	update := bson.M{
		"$set": bson.M{"confirmed_at": at},
	}

	result, err := r.db.Collection(confirmationTokenCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount == 1, nil
}

func (r *confirmationTokenMongoRepository) CountTokensCreatedSince(
	ctx context.Context,
	userID bson.ObjectID,
	since time.Time,
) (int64, error) {
	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": since},
	}

	return r.db.Collection(confirmationTokenCollection).CountDocuments(ctx, filter)
}

func (r *confirmationTokenMongoRepository) DeleteTokensByUserID(
	ctx context.Context,
	userID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(confirmationTokenCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
