package repository

import (
	"context"
	"time"

	"soulcare/internal/models"
	"soulcare/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageRepository struct{ base }

func NewMessageRepository(coll *mongo.Collection, timeout time.Duration) MessageRepository {
	return &messageRepository{base{coll: coll, timeout: timeout}}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, msg)
	return translate("insert message", err)
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var msg models.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&msg); err != nil {
		return nil, translate("find message", err)
	}
	return &msg, nil
}

func (r *messageRepository) ListRecent(ctx context.Context, limit int) ([]models.Message, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("list messages", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, translate("decode messages", err)
	}
	return messages, nil
}

func (r *messageRepository) Like(ctx context.Context, id, uid string) (bool, error) {
	return r.react(ctx, id, likeFilter, likeUpdate, uid)
}

func (r *messageRepository) Unlike(ctx context.Context, id, uid string) (bool, error) {
	return r.react(ctx, id, unlikeFilter, unlikeUpdate, uid)
}

func (r *messageRepository) react(ctx context.Context, id string,
	filter func(primitive.ObjectID, string) bson.M, update func(string) bson.M, uid string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter(oid, uid), update(uid))
	if err != nil {
		return false, translate("react to message", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// Nothing matched: either the message is gone or the reaction is already in place.
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate("count message", err)
	}
	if n == 0 {
		return false, apperrors.ErrNotFound
	}
	return false, nil
}

// likeFilter only matches when uid is not in likedBy yet, so the count
// and the set move together.
func likeFilter(id primitive.ObjectID, uid string) bson.M {
	return bson.M{"_id": id, "likedBy": bson.M{"$ne": uid}}
}

func likeUpdate(uid string) bson.M {
	return bson.M{
		"$inc":      bson.M{"likes": 1},
		"$addToSet": bson.M{"likedBy": uid},
	}
}

func unlikeFilter(id primitive.ObjectID, uid string) bson.M {
	return bson.M{"_id": id, "likedBy": uid}
}

func unlikeUpdate(uid string) bson.M {
	return bson.M{
		"$inc":  bson.M{"likes": -1},
		"$pull": bson.M{"likedBy": uid},
	}
}
