package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/model"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// documentValidationFailure is the server error code for a write rejected
// by a collection's $jsonSchema validator.
const documentValidationFailure = 121

type personDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Number string             `bson:"number"`
}

func (d personDocument) toModel() model.Person {
	return model.Person{
		ID:     d.ID.Hex(),
		Name:   d.Name,
		Number: d.Number,
	}
}

// MongoPersonStore stores persons as documents of a single collection.
type MongoPersonStore struct {
	coll *mongo.Collection
}

func NewMongoPersonStore(coll *mongo.Collection) *MongoPersonStore {
	return &MongoPersonStore{coll: coll}
}

// handleMongoError classifies a driver error. Server-side document
// validation failures become ValidationFailed, everything else Unhandled.
func handleMongoError(op string, err error) error {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == documentValidationFailure {
				return errs.ValidationFailed("person validation failed: "+we.Message, nil)
			}
		}
	}
	return errs.Unhandled(op+" failed", pkgerrors.WithStack(err))
}

func (s *MongoPersonStore) FindAll(ctx context.Context) ([]model.Person, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, handleMongoError("find persons", err)
	}

	var docs []personDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError("decode persons", err)
	}

	persons := make([]model.Person, 0, len(docs))
	for _, doc := range docs {
		persons = append(persons, doc.toModel())
	}
	return persons, nil
}

func (s *MongoPersonStore) FindByID(ctx context.Context, id string) (*model.Person, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc personDocument
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, handleMongoError("find person", err)
	}

	person := doc.toModel()
	return &person, nil
}

func (s *MongoPersonStore) Create(ctx context.Context, name, number string) (*model.Person, error) {
	person := model.Person{Name: name, Number: number}
	if err := person.Validate(); err != nil {
		return nil, err
	}

	doc := personDocument{ID: primitive.NewObjectID(), Name: name, Number: number}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, handleMongoError("insert person", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}

	person = doc.toModel()
	return &person, nil
}

func (s *MongoPersonStore) UpdateNumber(ctx context.Context, id, number string) (*model.Person, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateNumber(number); err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc personDocument
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "number", Value: number}}}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, handleMongoError("update person", err)
	}

	person := doc.toModel()
	return &person, nil
}

func (s *MongoPersonStore) DeleteByID(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return handleMongoError("delete person", err)
	}
	return nil
}

func (s *MongoPersonStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, handleMongoError("count persons", err)
	}
	return n, nil
}

func (s *MongoPersonStore) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return errs.Unhandled("ping mongodb", pkgerrors.WithStack(err))
	}
	return nil
}
