// Package mongodb is the MongoDB implementation of the travel-journal store.
// Users and trips live in the collections owned by the account and trips
// layers; follow edges live in their own collection with a unique
// (follower_id, followee_id) index.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/patric-chuzhbe/travelboard/internal/db/storage"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

const (
	usersCollection   = "users"
	tripsCollection   = "trips"
	followsCollection = "follows"
)

type userDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Username   string             `bson:"username"`
	Email      string             `bson:"email"`
	ProfilePic string             `bson:"profilePic,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

type tripDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      string             `bson:"user_id"`
	Country     string             `bson:"country"`
	PlaceName   string             `bson:"place_name,omitempty"`
	Description string             `bson:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type followDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	FollowerID string             `bson:"follower_id"`
	FolloweeID string             `bson:"followee_id"`
	CreatedAt  time.Time          `bson:"created_at"`
}

// MongoDB wraps a pooled client bound to one database.
type MongoDB struct {
	client            *mongo.Client
	database          *mongo.Database
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops the database before the indexes are created.
// Meant for tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to uri, selects databaseName and makes sure the follow-edge
// indexes exist.
func New(
	ctx context.Context,
	uri string,
	databaseName string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*MongoDB, error) {
	opts := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(opts)
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/db/mongodb/mongodb.go/New(): error while `mongo.Connect()` calling: %w",
			err,
		)
	}

	result := &MongoDB{
		client:            client,
		database:          client.Database(databaseName),
		connectionTimeout: connectionTimeout,
	}

	if opts.DBPreReset {
		if err := result.database.Drop(connectCtx); err != nil {
			return nil, fmt.Errorf(
				"in internal/db/mongodb/mongodb.go/New(): error while `result.database.Drop()` calling: %w",
				err,
			)
		}
	}

	if err := result.ensureIndexes(connectCtx); err != nil {
		return nil, fmt.Errorf(
			"in internal/db/mongodb/mongodb.go/New(): error while `result.ensureIndexes()` calling: %w",
			err,
		)
	}

	return result, nil
}

func (db *MongoDB) ensureIndexes(ctx context.Context) error {
	_, err := db.database.Collection(followsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "followee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "followee_id", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.database.Collection(tripsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})

	return err
}

func (db *MongoDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	doc := userDocument{
		ID:         primitive.NewObjectID(),
		Username:   usr.Username,
		Email:      usr.Email,
		ProfilePic: usr.ProfilePicture,
		CreatedAt:  usr.CreatedAt,
	}
	if usr.ID != "" {
		oid, err := primitive.ObjectIDFromHex(usr.ID)
		if err != nil {
			return "", models.ErrInvalidIdentifier
		}
		doc.ID = oid
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := db.database.Collection(usersCollection).InsertOne(ctx, doc); err != nil {
		return "", err
	}

	return doc.ID.Hex(), nil
}

func (db *MongoDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrInvalidIdentifier
	}

	return db.findUser(ctx, bson.M{"_id": oid})
}

func (db *MongoDB) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return db.findUser(ctx, bson.M{"email": email})
}

func (db *MongoDB) findUser(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc userDocument
	err := db.database.Collection(usersCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toUser(), nil
}

func (db *MongoDB) GetUsers(ctx context.Context) ([]user.User, error) {
	return db.findUsers(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (db *MongoDB) SearchUsersByUsername(ctx context.Context, pattern string) ([]user.User, error) {
	filter := bson.M{
		"username": primitive.Regex{Pattern: regexp.QuoteMeta(pattern), Options: "i"},
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(storage.SearchLimit)

	return db.findUsers(ctx, filter, findOptions)
}

func (db *MongoDB) findUsers(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]user.User, error) {
	cursor, err := db.database.Collection(usersCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]user.User, 0, len(docs))
	for _, doc := range docs {
		result = append(result, *doc.toUser())
	}

	return result, nil
}

func (db *MongoDB) CreateTrip(ctx context.Context, trip *models.Trip) (string, error) {
	doc := tripDocument{
		ID:          primitive.NewObjectID(),
		UserID:      trip.UserID,
		Country:     trip.Country,
		PlaceName:   trip.PlaceName,
		Description: trip.Description,
		CreatedAt:   trip.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := db.database.Collection(tripsCollection).InsertOne(ctx, doc); err != nil {
		return "", err
	}

	return doc.ID.Hex(), nil
}

func (db *MongoDB) GetTrips(ctx context.Context) ([]models.Trip, error) {
	return db.findTrips(ctx, bson.M{})
}

func (db *MongoDB) GetTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	return db.findTrips(ctx, bson.M{"user_id": userID})
}

func (db *MongoDB) findTrips(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	cursor, err := db.database.Collection(tripsCollection).Find(
		ctx,
		filter,
		options.Find().SetProjection(bson.M{"user_id": 1, "country": 1, "place_name": 1, "description": 1, "created_at": 1}),
	)
	if err != nil {
		return nil, err
	}

	var docs []tripDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]models.Trip, 0, len(docs))
	for _, doc := range docs {
		result = append(result, models.Trip{
			ID:          doc.ID.Hex(),
			UserID:      doc.UserID,
			Country:     doc.Country,
			PlaceName:   doc.PlaceName,
			Description: doc.Description,
			CreatedAt:   doc.CreatedAt,
		})
	}

	return result, nil
}

// ToggleFollowEdge deletes the edge and, when nothing was deleted, inserts
// it. A duplicate-key error on insert means a concurrent caller created the
// same edge, so the edge exists.
func (db *MongoDB) ToggleFollowEdge(ctx context.Context, followerID, followeeID string) (bool, error) {
	followerID, followeeID = canonicalID(followerID), canonicalID(followeeID)
	follows := db.database.Collection(followsCollection)

	deleted, err := follows.DeleteOne(ctx, bson.M{
		"follower_id": followerID,
		"followee_id": followeeID,
	})
	if err != nil {
		return false, err
	}
	if deleted.DeletedCount > 0 {
		return false, nil
	}

	_, err = follows.InsertOne(ctx, followDocument{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return false, err
	}

	return true, nil
}

func (db *MongoDB) GetFollowees(ctx context.Context, followerID string) ([]string, error) {
	cursor, err := db.database.Collection(followsCollection).Find(
		ctx,
		bson.M{"follower_id": canonicalID(followerID)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var docs []followDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.FolloweeID)
	}

	return result, nil
}

func (db *MongoDB) GetStats(ctx context.Context) (models.InternalStatsResponse, error) {
	var stats models.InternalStatsResponse
	var err error

	if stats.Users, err = db.database.Collection(usersCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return models.InternalStatsResponse{}, err
	}
	if stats.Trips, err = db.database.Collection(tripsCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return models.InternalStatsResponse{}, err
	}
	if stats.Follows, err = db.database.Collection(followsCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return models.InternalStatsResponse{}, err
	}

	return stats, nil
}

// Ping checks the primary within the configured timeout.
func (db *MongoDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.client.Ping(ctxWithTimeout, readpref.Primary())
}

func (db *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), db.connectionTimeout)
	defer cancel()

	return db.client.Disconnect(ctx)
}

func (doc *userDocument) toUser() *user.User {
	return &user.User{
		ID:             doc.ID.Hex(),
		Username:       doc.Username,
		Email:          doc.Email,
		ProfilePicture: doc.ProfilePic,
		CreatedAt:      doc.CreatedAt,
	}
}

// canonicalID keeps edge keys in the same lower-case form ObjectID.Hex
// produces for user ids.
func canonicalID(id string) string {
	if normalized, ok := models.NormalizeID(id); ok {
		return normalized
	}

	return id
}
