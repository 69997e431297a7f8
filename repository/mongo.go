package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cctv-surveillance-reports/be/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ActivityCollection = "cctvreports"
	StatusCollection   = "dailysurveillancestatuses"
	UserCollection     = "users"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// MongoReports implements Reports on a MongoDB collection.
type MongoReports[T any, P interface {
	*T
	Record
}] struct {
	coll *mongo.Collection
	stamper
}

func NewMongoReports[T any, P interface {
	*T
	Record
}](coll *mongo.Collection) *MongoReports[T, P] {
	return &MongoReports[T, P]{coll: coll, stamper: defaultStamper()}
}

// EnsureIndexes creates the listing indexes (createdAt desc, location asc).
func (r *MongoReports[T, P]) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	})
	return err
}

func (r *MongoReports[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	p := P(rec)
	if err := validate(p); err != nil {
		return nil, err
	}
	p.Assign(r.newID(), r.now())

	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *MongoReports[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *MongoReports[T, P]) List(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoReports[T, P]) ListByLocation(ctx context.Context, location string) ([]T, error) {
	return r.find(ctx, bson.M{"location": location})
}

func (r *MongoReports[T, P]) find(ctx context.Context, filter bson.M) ([]T, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoReports[T, P]) Update(ctx context.Context, id string, rec *T) (*T, error) {
	p := P(rec)
	if err := validate(p); err != nil {
		return nil, err
	}
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Assign(id, P(existing).GetCreatedAt())

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id}, rec)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *MongoReports[T, P]) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoUsers implements Users on a MongoDB collection.
type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(coll *mongo.Collection) *MongoUsers {
	return &MongoUsers{coll: coll}
}

func (r *MongoUsers) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUsers) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoUsers) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// NewMongoStore wires the three collections of db into a Store and ensures indexes.
func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*Store, error) {
	db := client.Database(database)

	activities := NewMongoReports[models.ActivityReport](db.Collection(ActivityCollection))
	statuses := NewMongoReports[models.StatusReport](db.Collection(StatusCollection))
	users := NewMongoUsers(db.Collection(UserCollection))

	if err := activities.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("activity indexes: %w", err)
	}
	if err := statuses.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("status indexes: %w", err)
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("user indexes: %w", err)
	}

	return &Store{
		Activities: activities,
		Statuses:   statuses,
		Users:      users,
		Close:      client.Disconnect,
	}, nil
}
