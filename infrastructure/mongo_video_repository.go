// infrastructure/mongo_video_repository.go
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vitovidale/video-upload-gateway/domain"
)

// storedVideoDocument is the shape of a record in the videos collection. Ids
// are ObjectIDs because the analysis service looks videos up by ObjectID.
type storedVideoDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Filename  string             `bson:"filename"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type MongoVideoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ domain.VideoRepository = (*MongoVideoRepository)(nil)

func NewMongoVideoRepository(ctx context.Context, uri, database, collection string) (*MongoVideoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "filename", Value: 1}},
		Options: options.Index().SetName("idx_filename"),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create filename index: %w", err)
	}

	return &MongoVideoRepository{client: client, collection: coll}, nil
}

func (r *MongoVideoRepository) Save(ctx context.Context, video *domain.StoredVideo) error {
	doc := newStoredVideoDocument(video.Filename, time.Now())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	*video = doc.toDomain()
	return nil
}

func (r *MongoVideoRepository) FindByID(ctx context.Context, id string) (*domain.StoredVideo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVideoNotFound
	}
	var doc storedVideoDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find video %s: %w", id, err)
	}
	v := doc.toDomain()
	return &v, nil
}

func (r *MongoVideoRepository) DeleteByFilename(ctx context.Context, filename string) error {
	res, err := r.collection.DeleteMany(ctx, bson.M{"filename": filename})
	if err != nil {
		return fmt.Errorf("failed to delete video %s: %w", filename, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}

func (r *MongoVideoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoVideoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// MongoDB stores milliseconds, so the timestamp is truncated up front to keep
// the returned record equal to what a later read yields.
func newStoredVideoDocument(filename string, now time.Time) storedVideoDocument {
	return storedVideoDocument{
		ID:        primitive.NewObjectID(),
		Filename:  filename,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
}

func (d storedVideoDocument) toDomain() domain.StoredVideo {
	return domain.StoredVideo{
		ID:        d.ID.Hex(),
		Filename:  d.Filename,
		CreatedAt: d.CreatedAt,
	}
}
