package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fileshelf/backend/internal/config"
	"github.com/fileshelf/backend/internal/models"
)

const (
	usersCollection = "users"
	filesCollection = "files"

	// ListPageSize is the fixed page size for file listings.
	ListPageSize = 20
)

// Mongo wraps the document database behind typed operations over the users
// and files collections. It is the only arbiter of metadata consistency;
// callers see mongo.ErrNoDocuments for absent records and duplicate-key
// errors for unique-index violations.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, cfg config.DBConfig) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, err
	}

	m := &Mongo{client: client, db: client.Database(cfg.Name)}
	if err := m.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo) users() *mongo.Collection {
	return m.db.Collection(usersCollection)
}

func (m *Mongo) files() *mongo.Collection {
	return m.db.Collection(filesCollection)
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	result, err := m.users().InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := m.users().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mongo) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := m.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mongo) CountUsers(ctx context.Context) (int64, error) {
	return m.users().CountDocuments(ctx, bson.M{})
}

func (m *Mongo) CountFiles(ctx context.Context) (int64, error) {
	return m.files().CountDocuments(ctx, bson.M{})
}

func (m *Mongo) InsertFile(ctx context.Context, file *models.File) (primitive.ObjectID, error) {
	result, err := m.files().InsertOne(ctx, file)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// FindFileByID fetches a record by id alone, without an ownership filter.
func (m *Mongo) FindFileByID(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var file models.File
	if err := m.files().FindOne(ctx, bson.M{"_id": id}).Decode(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (m *Mongo) FindOwnedFile(ctx context.Context, userID, id primitive.ObjectID) (*models.File, error) {
	var file models.File
	filter := bson.M{"_id": id, "userId": userID}
	if err := m.files().FindOne(ctx, filter).Decode(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// SetFilePublic flips the visibility flag on an owned record. Returns
// mongo.ErrNoDocuments when no owned record matches.
func (m *Mongo) SetFilePublic(ctx context.Context, userID, id primitive.ObjectID, public bool) error {
	filter := bson.M{"_id": id, "userId": userID}
	result, err := m.files().UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isPublic": public}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFiles returns one page of records owned by userID under the given
// parent, in natural insertion order.
func (m *Mongo) ListFiles(ctx context.Context, userID primitive.ObjectID, parent models.ParentRef, page int64) ([]models.File, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "userId", Value: userID},
			{Key: "parentId", Value: parent},
		}}},
		{{Key: "$skip", Value: page * ListPageSize}},
		{{Key: "$limit", Value: ListPageSize}},
	}

	cursor, err := m.files().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	files := make([]models.File, 0, ListPageSize)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}
