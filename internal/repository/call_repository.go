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

type callRepository struct{ base }

func NewCallRepository(coll *mongo.Collection, timeout time.Duration) CallRepository {
	return &callRepository{base{coll: coll, timeout: timeout}}
}

func (r *callRepository) Create(ctx context.Context, call *models.Call) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	if call.ID.IsZero() {
		call.ID = primitive.NewObjectID()
	}
	call.Open = call.IsOpen()
	_, err := r.coll.InsertOne(ctx, call)
	return translate("insert call", err)
}

func (r *callRepository) GetByID(ctx context.Context, id string) (*models.Call, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var call models.Call
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&call); err != nil {
		return nil, translate("find call", err)
	}
	return &call, nil
}

func (r *callRepository) ListOpenByParticipant(ctx context.Context, uid string) ([]models.Call, error) {
	return r.find(ctx, openCallsFilter(uid), options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}}))
}

func (r *callRepository) ListByParticipantSince(ctx context.Context, uid string, since time.Time) ([]models.Call, error) {
	filter := bson.M{"participants": uid, "startTime": bson.M{"$gte": since}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}}))
}

func (r *callRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Call, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("list calls", err)
	}
	defer cursor.Close(ctx)

	calls := []models.Call{}
	if err := cursor.All(ctx, &calls); err != nil {
		return nil, translate("decode calls", err)
	}
	return calls, nil
}

func (r *callRepository) CompareAndSwap(ctx context.Context, call *models.Call) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, casFilter(call), casUpdate(call))
	if err != nil {
		return translate("update call", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrStale
	}
	call.Version++
	return nil
}

func openCallsFilter(uid string) bson.M {
	return bson.M{
		"participants": uid,
		"status":       bson.M{"$in": []string{models.CallStatusWaiting, models.CallStatusActive}},
	}
}

func casFilter(call *models.Call) bson.M {
	return bson.M{"_id": call.ID, "version": call.Version}
}

// casUpdate rewrites every mutable field and bumps the version.
func casUpdate(call *models.Call) bson.M {
	return bson.M{
		"$set": bson.M{
			"participants": call.Participants,
			"usernames":    call.Usernames,
			"status":       call.Status,
			"open":         call.IsOpen(),
			"endTime":      call.EndTime,
			"duration":     call.Duration,
			"notes":        call.Notes,
			"rating":       call.Rating,
		},
		"$inc": bson.M{"version": 1},
	}
}
