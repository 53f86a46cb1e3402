package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// TranscriptRepo handles MongoDB operations for student transcripts
type TranscriptRepo interface {
	Get(ctx context.Context, studentID string) (*model.Transcript, error)
	Save(ctx context.Context, transcript *model.Transcript) error
}

type transcriptRepo struct {
	collection *mongo.Collection
}

// NewTranscriptRepo creates a new transcript repository
func NewTranscriptRepo(db *mongo.Database) TranscriptRepo {
	return &transcriptRepo{
		collection: db.Collection("transcripts"),
	}
}

func (r *transcriptRepo) Get(ctx context.Context, studentID string) (*model.Transcript, error) {
	var t model.Transcript
	err := r.collection.FindOne(ctx, bson.M{"_id": studentID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transcriptRepo) Save(ctx context.Context, transcript *model.Transcript) error {
	transcript.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": transcript.StudentID}, transcript, opts)
	return err
}
