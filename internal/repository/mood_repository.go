package repository

import (
	"context"
	"time"

	"soulcare/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type moodRepository struct{ base }

func NewMoodRepository(coll *mongo.Collection, timeout time.Duration) MoodRepository {
	return &moodRepository{base{coll: coll, timeout: timeout}}
}

func (r *moodRepository) Create(ctx context.Context, checkin *models.MoodCheckin) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	if checkin.ID.IsZero() {
		checkin.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, checkin)
	return translate("insert mood checkin", err)
}

func (r *moodRepository) ListByUserSince(ctx context.Context, uid string, since time.Time, limit int) ([]models.MoodCheckin, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{"userId": uid, "timestamp": bson.M{"$gte": since}}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("list mood checkins", err)
	}
	defer cursor.Close(ctx)

	checkins := []models.MoodCheckin{}
	if err := cursor.All(ctx, &checkins); err != nil {
		return nil, translate("decode mood checkins", err)
	}
	return checkins, nil
}

type feedbackRepository struct{ base }

func NewFeedbackRepository(coll *mongo.Collection, timeout time.Duration) FeedbackRepository {
	return &feedbackRepository{base{coll: coll, timeout: timeout}}
}

func (r *feedbackRepository) Create(ctx context.Context, fb *models.CallFeedback) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, fb)
	return translate("insert call feedback", err)
}

func (r *feedbackRepository) ListByCall(ctx context.Context, callID string) ([]models.CallFeedback, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"callId": callID}, opts)
	if err != nil {
		return nil, translate("list call feedback", err)
	}
	defer cursor.Close(ctx)

	items := []models.CallFeedback{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, translate("decode call feedback", err)
	}
	return items, nil
}
