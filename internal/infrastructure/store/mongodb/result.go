package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/metrics"
)

type resultDoc struct {
	JobID     string                   `bson:"job_id"`
	Result    *entity.GenerationResult `bson:"result"`
	CreatedAt time.Time                `bson:"created_at"`
}

type MongoResultRepo struct {
	col *mongo.Collection
}

func NewMongoResultRepo(db *mongo.Database) repository.ResultRepository {
	col := db.Collection("results")

	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{bson.E{Key: "job_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{bson.E{Key: "result.generation_id", Value: 1}}},
	})

	return &MongoResultRepo{col: col}
}

// Save upserts so a re-run job replaces its previous result.
func (r *MongoResultRepo) Save(ctx context.Context, jobID string, result *entity.GenerationResult) error {
	metrics.IncStoreOp("put")

	doc := resultDoc{JobID: jobID, Result: result, CreatedAt: time.Now()}
	_, err := r.col.ReplaceOne(ctx, bson.M{"job_id": jobID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		metrics.IncError("mongo_result_repo", "save_error")
		return err
	}
	return nil
}

func (r *MongoResultRepo) GetByJobID(ctx context.Context, jobID string) (*entity.GenerationResult, error) {
	return r.findOne(ctx, bson.M{"job_id": jobID})
}

func (r *MongoResultRepo) GetByGenerationID(ctx context.Context, generationID string) (*entity.GenerationResult, error) {
	return r.findOne(ctx, bson.M{"result.generation_id": generationID})
}

func (r *MongoResultRepo) findOne(ctx context.Context, filter bson.M) (*entity.GenerationResult, error) {
	metrics.IncStoreOp("get")

	var doc resultDoc
	err := r.col.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		metrics.IncError("mongo_result_repo", "get_error")
		return nil, err
	}
	return doc.Result, nil
}

func (r *MongoResultRepo) ListGenerationIDs(ctx context.Context) ([]string, error) {
	metrics.IncStoreOp("list")

	values, err := r.col.Distinct(ctx, "result.generation_id", bson.D{})
	if err != nil {
		metrics.IncError("mongo_result_repo", "list_error")
		return nil, err
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (r *MongoResultRepo) DeleteByJobID(ctx context.Context, jobID string) error {
	metrics.IncStoreOp("delete")

	_, err := r.col.DeleteMany(ctx, bson.M{"job_id": jobID})
	if err != nil {
		metrics.IncError("mongo_result_repo", "delete_error")
		return err
	}
	return nil
}
