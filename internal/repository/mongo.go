package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"simple-todo/internal/models"
)

const (
	usersCollection = "users"
	todosCollection = "todos"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Password string             `bson:"password"`
}

func (d userDocument) model() models.User {
	return models.User{ID: d.ID.Hex(), Username: d.Username, PasswordHash: d.Password}
}

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d todoDocument) model() models.Task {
	return models.Task{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// EnsureMongoIndexes creates the unique username index and the owner index
// on todos. It is idempotent.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}
	_, err = db.Collection(todosCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongo todos index: %w", err)
	}
	return nil
}

// MongoUserStore handles user documents in MongoDB.
type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection(usersCollection)}
}

func (s *MongoUserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	res, err := s.col.InsertOne(ctx, userDocument{Username: u.Username, Password: u.PasswordHash})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("mongo insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return u, nil
}

func (s *MongoUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDocument
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.model(), nil
}

// MongoTaskStore handles todo documents in MongoDB.
type MongoTaskStore struct {
	col *mongo.Collection
}

func NewMongoTaskStore(db *mongo.Database) *MongoTaskStore {
	return &MongoTaskStore{col: db.Collection(todosCollection)}
}

func (s *MongoTaskStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find todos: %w", err)
	}
	defer cur.Close(ctx)

	var docs []todoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode todos: %w", err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.model())
	}
	return tasks, nil
}

func (s *MongoTaskStore) Create(ctx context.Context, t models.Task) (models.Task, error) {
	doc := todoDocument{
		UserID:      t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return models.Task{}, fmt.Errorf("mongo insert todo: %w", err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return t, nil
}

func (s *MongoTaskStore) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Task{}, ErrNotFound
	}

	set := bson.M{"updatedAt": patch.UpdatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	var doc todoDocument
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "userId": ownerID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("mongo update todo: %w", err)
	}
	return doc.model(), nil
}

func (s *MongoTaskStore) Delete(ctx context.Context, ownerID, id string) (models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Task{}, ErrNotFound
	}

	var doc todoDocument
	err = s.col.FindOneAndDelete(ctx, bson.M{"_id": oid, "userId": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("mongo delete todo: %w", err)
	}
	return doc.model(), nil
}
