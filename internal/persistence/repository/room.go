package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type roomDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *roomDocument) toDomain() *domain.Room {
	return &domain.Room{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type roomRepository struct {
	db *mongo.Database
}

func NewRoomRepository(db *mongo.Database) domain.RoomRepository {
	return &roomRepository{
		db: db,
	}
}

func (r *roomRepository) collection() *mongo.Collection {
	return r.db.Collection(db.RoomsCollection)
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	doc := roomDocument{
		Name:        room.Name,
		Description: room.Description,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}

	res, err := r.collection().InsertOne(ctx, doc)
	if err != nil {
		return nil, storeError("insert room", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}

	return doc.toDomain(), nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	oid, err := parseObjectID(id, domain.ErrRoomNotFound)
	if err != nil {
		return nil, err
	}

	var doc roomDocument
	if err := r.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, storeError("find room", err)
	}

	return doc.toDomain(), nil
}

func (r *roomRepository) List(ctx context.Context) ([]domain.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeError("list rooms", err)
	}
	defer cursor.Close(ctx)

	var docs []roomDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("decode rooms", err)
	}

	rooms := make([]domain.Room, 0, len(docs))
	for i := range docs {
		rooms = append(rooms, *docs[i].toDomain())
	}

	return rooms, nil
}

func (r *roomRepository) Update(ctx context.Context, id, name, description string) (*domain.Room, error) {
	oid, err := parseObjectID(id, domain.ErrRoomNotFound)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"name":        name,
		"description": description,
		"updated_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc roomDocument
	if err := r.collection().FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, storeError("update room", err)
	}

	return doc.toDomain(), nil
}

func (r *roomRepository) Delete(ctx context.Context, id string) (*domain.Room, error) {
	oid, err := parseObjectID(id, domain.ErrRoomNotFound)
	if err != nil {
		return nil, err
	}

	var doc roomDocument
	if err := r.collection().FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, storeError("delete room", err)
	}

	return doc.toDomain(), nil
}
