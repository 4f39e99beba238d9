package repository

import (
	"errors"
	"fmt"

	"github.com/hilthontt/chatroom/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// storeError tags driver failures that mean the database could not be
// reached so the presentation layer can answer 503.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}

	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// parseObjectID treats malformed ids as unknown ones.
func parseObjectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}
