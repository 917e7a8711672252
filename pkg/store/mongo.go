package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"wiki-api/pkg/models"
)

// DefaultMongoDatabase is used when the connection string names no database.
const DefaultMongoDatabase = "WikiDB"

type mongoArticle struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Title   string             `bson:"title,omitempty"`
	Content string             `bson:"content,omitempty"`
}

func (d mongoArticle) model() models.Article {
	return models.Article{ID: d.ID.Hex(), Title: d.Title, Content: d.Content}
}

// MongoStore keeps articles in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb uri: %w", err)
	}
	database := cs.Database
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(Collection),
	}, nil
}

func titleFilter(title string) bson.M {
	return bson.M{"title": title}
}

// replacementDoc builds a full document; empty fields are left out.
func replacementDoc(a models.Article) mongoArticle {
	return mongoArticle{Title: a.Title, Content: a.Content}
}

func mergeDoc(p models.ArticlePatch) bson.M {
	set := bson.M{}
	for k, v := range p.Fields() {
		set[k] = v
	}
	return bson.M{"$set": set}
}

func (s *MongoStore) Find(ctx context.Context) ([]models.Article, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	var docs []mongoArticle
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	articles := make([]models.Article, 0, len(docs))
	for _, d := range docs {
		articles = append(articles, d.model())
	}
	return articles, nil
}

func (s *MongoStore) FindOne(ctx context.Context, title string) (*models.Article, error) {
	var doc mongoArticle
	err := s.coll.FindOne(ctx, titleFilter(title)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	a := doc.model()
	return &a, nil
}

func (s *MongoStore) Insert(ctx context.Context, article models.Article) error {
	if _, err := s.coll.InsertOne(ctx, replacementDoc(article)); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *MongoStore) Replace(ctx context.Context, title string, article models.Article) error {
	if _, err := s.coll.ReplaceOne(ctx, titleFilter(title), replacementDoc(article)); err != nil {
		return fmt.Errorf("replace article: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, title string, patch models.ArticlePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if _, err := s.coll.UpdateOne(ctx, titleFilter(title), mergeDoc(patch)); err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, title string) error {
	if _, err := s.coll.DeleteOne(ctx, titleFilter(title)); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteAll(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
