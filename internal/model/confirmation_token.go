package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ConfirmationToken represents a single-use, time-boxed email confirmation
// credential. ConfirmedAt stays nil until the token is consumed; a token is
// usable only while ConfirmedAt is nil and ExpiresAt is in the future.
type ConfirmationToken struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      bson.ObjectID `bson:"user_id"`
	Token       string        `bson:"token"`
	CreatedAt   time.Time     `bson:"created_at"`
	ExpiresAt   time.Time     `bson:"expires_at"`
	ConfirmedAt *time.Time    `bson:"confirmed_at"`
}
