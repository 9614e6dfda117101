package repository

import (
	"context"
	"testing"
	"time"

	"soulcare/internal/models"
	"soulcare/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestLikeFiltersKeepCountAndSetTogether(t *testing.T) {
	id := primitive.NewObjectID()

	assert.Equal(t, bson.M{"_id": id, "likedBy": bson.M{"$ne": "u1"}}, likeFilter(id, "u1"))
	assert.Equal(t, bson.M{"$inc": bson.M{"likes": 1}, "$addToSet": bson.M{"likedBy": "u1"}}, likeUpdate("u1"))
	assert.Equal(t, bson.M{"_id": id, "likedBy": "u1"}, unlikeFilter(id, "u1"))
	assert.Equal(t, bson.M{"$inc": bson.M{"likes": -1}, "$pull": bson.M{"likedBy": "u1"}}, unlikeUpdate("u1"))
}

func TestCASUpdateShape(t *testing.T) {
	call := &models.Call{ID: primitive.NewObjectID(), Status: models.CallStatusEnded, Version: 3}

	assert.Equal(t, bson.M{"_id": call.ID, "version": int64(3)}, casFilter(call))

	update := casUpdate(call)
	set := update["$set"].(bson.M)
	assert.Equal(t, false, set["open"])
	assert.Equal(t, models.CallStatusEnded, set["status"])
	assert.Equal(t, bson.M{"version": 1}, update["$inc"])
}

func TestProfileSetOnlyWritesPresentFields(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	bio := "new bio"

	set := profileSet(models.ProfileUpdate{Bio: &bio}, at)

	assert.Equal(t, bson.M{"profile.bio": "new bio", "updatedAt": at}, set)
}

func TestOpenCallsFilter(t *testing.T) {
	assert.Equal(t, bson.M{
		"participants": "u1",
		"status":       bson.M{"$in": []string{"waiting", "active"}},
	}, openCallsFilter("u1"))
}

func TestInvalidObjectIDIsNotFound(t *testing.T) {
	repo := &messageRepository{}
	_, err := repo.GetByID(context.Background(), "not-hex")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	calls := &callRepository{}
	_, err = calls.GetByID(context.Background(), "zzz")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMessageRepositoryWithMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("like applies when not yet liked", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		changed, err := repo.Like(context.Background(), id.Hex(), "u1")
		require.NoError(mt, err)
		assert.True(mt, changed)
	})

	mt.Run("repeated like is a no-op", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.Coll, time.Second)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "soulcare.messages", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		changed, err := repo.Like(context.Background(), id.Hex(), "u1")
		require.NoError(mt, err)
		assert.False(mt, changed)
	})

	mt.Run("unlike on missing message", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.Coll, time.Second)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "soulcare.messages", mtest.FirstBatch),
		)

		_, err := repo.Unlike(context.Background(), id.Hex(), "u1")
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("list recent decodes", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "soulcare.messages", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id}, {Key: "text", Value: "newest"}, {Key: "likes", Value: 2}},
		))

		msgs, err := repo.ListRecent(context.Background(), 10)
		require.NoError(mt, err)
		require.Len(mt, msgs, 1)
		assert.Equal(mt, "newest", msgs[0].Text)
		assert.Equal(mt, 2, msgs[0].Likes)
	})
}

func TestCallRepositoryWithMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate open call", func(mt *mtest.T) {
		repo := NewCallRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: soulcare.calls index: calls_one_open_per_participant",
		}))

		call := &models.Call{Participants: []string{"u1"}, Status: models.CallStatusWaiting}
		err := repo.Create(context.Background(), call)
		assert.ErrorIs(mt, err, apperrors.ErrDuplicate)
		assert.True(mt, call.Open)
	})

	mt.Run("compare and swap bumps version", func(mt *mtest.T) {
		repo := NewCallRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		call := &models.Call{ID: primitive.NewObjectID(), Status: models.CallStatusActive, Version: 1}
		require.NoError(mt, repo.CompareAndSwap(context.Background(), call))
		assert.Equal(mt, int64(2), call.Version)
	})

	mt.Run("compare and swap loses race", func(mt *mtest.T) {
		repo := NewCallRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		call := &models.Call{ID: primitive.NewObjectID(), Status: models.CallStatusActive, Version: 1}
		assert.ErrorIs(mt, repo.CompareAndSwap(context.Background(), call), apperrors.ErrStale)
		assert.Equal(mt, int64(1), call.Version)
	})

	mt.Run("get missing call", func(mt *mtest.T) {
		repo := NewCallRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "soulcare.calls", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})
}
