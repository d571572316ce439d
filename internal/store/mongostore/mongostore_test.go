package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JonMunkholm/proset/internal/store"
)

func TestToBSON(t *testing.T) {
	assert.Equal(t, bson.M{}, toBSON(nil))
	assert.Equal(t, bson.M{"name": "Acme"}, toBSON(store.Filter{"name": "Acme"}))
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "42", idString(42))
}
