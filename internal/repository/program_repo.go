package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

// ProgramRepo handles MongoDB operations for programs
type ProgramRepo interface {
	Create(ctx context.Context, program *model.Program) (string, error)
	GetByID(ctx context.Context, id string) (*model.Program, error)
	List(ctx context.Context) ([]*model.Program, error)
	Update(ctx context.Context, program *model.Program) error
	Delete(ctx context.Context, id string) error
}

// programDocument is the stored form of a program. The requirement structure
// is kept as a nested document so it stays queryable from the mongo shell.
type programDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Kind             model.ProgramKind  `bson:"kind"`
	Requirements     bson.Raw           `bson:"requirements,omitempty"`
	PublishedVersion int                `bson:"publishedVersion"`
	PublishedAt      *time.Time         `bson:"publishedAt,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

type programRepo struct {
	collection *mongo.Collection
}

// NewProgramRepo creates a new program repository
func NewProgramRepo(db *mongo.Database) ProgramRepo {
	return &programRepo{
		collection: db.Collection("programs"),
	}
}

func (r *programRepo) Create(ctx context.Context, program *model.Program) (string, error) {
	program.CreatedAt = time.Now().UTC()
	program.UpdatedAt = program.CreatedAt

	doc, err := toDocument(program)
	if err != nil {
		return "", err
	}
	doc.ID = primitive.NilObjectID

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert program: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("insert program: unexpected id type")
	}
	program.ID = oid.Hex()
	return program.ID, nil
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// not a valid id, so no such program
		return nil, nil
	}

	var doc programDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(&doc)
}

func (r *programRepo) List(ctx context.Context) ([]*model.Program, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []programDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	programs := make([]*model.Program, 0, len(docs))
	for i := range docs {
		p, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, nil
}

func (r *programRepo) Update(ctx context.Context, program *model.Program) error {
	program.UpdatedAt = time.Now().UTC()
	doc, err := toDocument(program)
	if err != nil {
		return err
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("update program %s: %w", program.ID, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *programRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func toDocument(p *model.Program) (*programDocument, error) {
	doc := &programDocument{
		Name:             p.Name,
		Kind:             p.Kind,
		PublishedVersion: p.PublishedVersion,
		PublishedAt:      p.PublishedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.ID != "" {
		oid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return nil, fmt.Errorf("program id %q: %w", p.ID, err)
		}
		doc.ID = oid
	}
	if p.Requirements != nil {
		raw, err := structureToBSON(p.Requirements)
		if err != nil {
			return nil, err
		}
		doc.Requirements = raw
	}
	return doc, nil
}

func fromDocument(doc *programDocument) (*model.Program, error) {
	p := &model.Program{
		ID:               doc.ID.Hex(),
		Name:             doc.Name,
		Kind:             doc.Kind,
		PublishedVersion: doc.PublishedVersion,
		PublishedAt:      doc.PublishedAt,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	s, err := structureFromBSON(doc.Requirements)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", p.ID, err)
	}
	p.Requirements = s
	return p, nil
}

// structureToBSON goes through JSON so the polymorphic requirement encoding
// is shared with the REST layer.
func structureToBSON(s *model.ProgramRequirementsStructure) (bson.Raw, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode requirements: %w", err)
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("convert requirements: %w", err)
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert requirements: %w", err)
	}
	return raw, nil
}

func structureFromBSON(raw bson.Raw) (*model.ProgramRequirementsStructure, error) {
	if len(raw) == 0 {
		return requirements.Parse(nil)
	}
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert requirements: %w", err)
	}
	return requirements.ParseJSON(data)
}
