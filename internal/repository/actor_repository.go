package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type ActorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

func (r *ActorRepository) Create(ctx context.Context, actor *model.Actor) error {
	return r.db.WithContext(ctx).Create(actor).Error
}

func (r *ActorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Actor, error) {
	var actor model.Actor
	if err := r.db.WithContext(ctx).First(&actor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *ActorRepository) GetByEmail(ctx context.Context, email string) (*model.Actor, error) {
	var actor model.Actor
	err := r.db.WithContext(ctx).
		First(&actor, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *ActorRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*model.Actor, error) {
	var actor model.Actor
	err := r.db.WithContext(ctx).
		First(&actor, "reset_token_hash = ?", tokenHash).Error
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

// SaveLoginState persists only the lockout bookkeeping columns so a login
// attempt never clobbers unrelated profile edits.
func (r *ActorRepository) SaveLoginState(ctx context.Context, actor *model.Actor) error {
	return r.db.WithContext(ctx).
		Model(&model.Actor{}).
		Where("id = ?", actor.ID).
		Updates(map[string]interface{}{
			"failed_attempts": actor.FailedAttempts,
			"lock_until":      actor.LockUntil,
		}).Error
}

func (r *ActorRepository) SetResetToken(ctx context.Context, actorID uuid.UUID, tokenHash string, expiry time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Actor{}).
		Where("id = ?", actorID).
		Updates(map[string]interface{}{
			"reset_token_hash":   tokenHash,
			"reset_token_expiry": expiry,
		}).Error
}

// CompleteReset writes the new password hash and burns the token in one
// update; the token is single-use.
func (r *ActorRepository) CompleteReset(ctx context.Context, actorID uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.Actor{}).
		Where("id = ?", actorID).
		Updates(map[string]interface{}{
			"password_hash":      passwordHash,
			"reset_token_hash":   gorm.Expr("NULL"),
			"reset_token_expiry": gorm.Expr("NULL"),
			"failed_attempts":    0,
			"lock_until":         gorm.Expr("NULL"),
		}).Error
}

func (r *ActorRepository) Deactivate(ctx context.Context, actorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Actor{}).
		Where("id = ?", actorID).
		Update("is_active", false).Error
}

func (r *ActorRepository) Unlock(ctx context.Context, actorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Actor{}).
		Where("id = ?", actorID).
		Updates(map[string]interface{}{
			"failed_attempts": 0,
			"lock_until":      gorm.Expr("NULL"),
		}).Error
}

func (r *ActorRepository) List(ctx context.Context, limit, offset int) ([]model.Actor, error) {
	query := r.db.WithContext(ctx).Model(&model.Actor{}).Order("created_at DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	} else {
		query = query.Limit(200)
	}
	var actors []model.Actor
	if err := query.Find(&actors).Error; err != nil {
		return nil, err
	}
	return actors, nil
}
