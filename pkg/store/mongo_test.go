package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"wiki-api/pkg/models"
)

func TestMongoDocs(t *testing.T) {
	t.Run("replacement drops empty fields", func(t *testing.T) {
		raw, err := bson.Marshal(replacementDoc(models.Article{ID: "ignored", Title: "T2"}))
		require.NoError(t, err)

		var doc bson.M
		require.NoError(t, bson.Unmarshal(raw, &doc))
		assert.Equal(t, bson.M{"title": "T2"}, doc)
	})

	t.Run("merge sets present fields only", func(t *testing.T) {
		doc := mergeDoc(models.ArticlePatch{Content: strPtr("Hi")})
		assert.Equal(t, bson.M{"$set": bson.M{"content": "Hi"}}, doc)
	})

	t.Run("title filter", func(t *testing.T) {
		assert.Equal(t, bson.M{"title": "Intro"}, titleFilter("Intro"))
	})
}

func TestNewMongoStore_BadURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), "mongodb://")
	assert.Error(t, err)
}

// Runs against a real server only when MONGODB_TEST_URI is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	testStoreContract(t, func(t *testing.T) Store {
		ctx := context.Background()
		s, err := NewMongoStore(ctx, uri)
		require.NoError(t, err)
		require.NoError(t, s.DeleteAll(ctx))
		t.Cleanup(func() { s.Close(ctx) })
		return s
	})
}
