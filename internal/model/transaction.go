package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Transaction represents a single bookkeeping entry under an account.
// Amount is stored in minor currency units; negative values are expenses.
type Transaction struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	AccountID bson.ObjectID `bson:"account_id"`
	Name      string        `bson:"name"`
	Amount    int64         `bson:"amount"`
	Date      time.Time     `bson:"date"`
	CreatedAt time.Time     `bson:"created_at"`
}
