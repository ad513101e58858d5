package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AccountMember links a user to an account they can use. The owner gets a
// membership row at provisioning time; further rows may reference the account
// for shared (family) access.
type AccountMember struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	AccountID bson.ObjectID `bson:"account_id"`
	UserID    bson.ObjectID `bson:"user_id"`
	CreatedAt time.Time     `bson:"created_at"`
}
