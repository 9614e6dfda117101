package repository

import (
	"context"
	"time"

	"soulcare/internal/models"
	"soulcare/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct{ base }

func NewUserRepository(coll *mongo.Collection, timeout time.Duration) UserRepository {
	return &userRepository{base{coll: coll, timeout: timeout}}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, user)
	return translate("insert user", err)
}

func (r *userRepository) GetByID(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate, at time.Time) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": profileSet(update, at)})
	if err != nil {
		return translate("update profile", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) TouchLastSeen(ctx context.Context, uid string, at time.Time) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{"lastSeen": at}})
	if err != nil {
		return translate("touch last seen", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// profileSet builds the $set document for the allowed fields present in update.
func profileSet(update models.ProfileUpdate, at time.Time) bson.M {
	set := bson.M{"updatedAt": at}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Bio != nil {
		set["profile.bio"] = *update.Bio
	}
	if update.Avatar != nil {
		set["profile.avatar"] = *update.Avatar
	}
	if update.Preferences != nil {
		set["profile.preferences"] = *update.Preferences
	}
	return set
}

type credentialRepository struct{ base }

func NewCredentialRepository(coll *mongo.Collection, timeout time.Duration) CredentialRepository {
	return &credentialRepository{base{coll: coll, timeout: timeout}}
}

func (r *credentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, cred)
	return translate("insert credential", err)
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var cred models.Credential
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&cred); err != nil {
		return nil, translate("find credential", err)
	}
	return &cred, nil
}

func (r *credentialRepository) Delete(ctx context.Context, uid string) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": uid})
	return translate("delete credential", err)
}
