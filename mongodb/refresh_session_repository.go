package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pilab-dev/kauth/domain"
)

// RefreshSessionRepository implements domain.RefreshSessionRepository.
//
// State transitions are conditional updates: MarkRotated and MarkRevoked only
// match documents whose timestamp is still unset, so two concurrent callers
// racing on the same record resolve to exactly one winner inside MongoDB.
// Records are never deleted here; inert sessions remain for audit.
type RefreshSessionRepository struct {
	sessions *mongo.Collection
}

// NewRefreshSessionRepository creates a new RefreshSessionRepository and
// ensures its indexes.
func NewRefreshSessionRepository(ctx context.Context, db *mongo.Database) (domain.RefreshSessionRepository, error) {
	repo := &RefreshSessionRepository{
		sessions: db.Collection(RefreshSessionsCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create %s indexes: %w", RefreshSessionsCollection, err)
	}
	return repo, nil
}

func (r *RefreshSessionRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			// Lookup path for rotate/reissue.
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Lookup path for revoke-latest.
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "issued_at", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := r.sessions.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return err
	}
	log.Info().Msgf("Indexes for %s collection ensured.", RefreshSessionsCollection)
	return nil
}

// CreateSession inserts a new active session record.
func (r *RefreshSessionRepository) CreateSession(ctx context.Context, session *domain.RefreshSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if _, err := r.sessions.InsertOne(ctx, session); err != nil {
		log.Error().Err(err).Str("userID", session.UserID).Msg("Error creating refresh session")
		return err
	}
	return nil
}

// FindByUserAndHash returns the session for (userID, tokenHash), or
// domain.ErrNotFound.
func (r *RefreshSessionRepository) FindByUserAndHash(ctx context.Context, userID, tokenHash string) (*domain.RefreshSession, error) {
	var session domain.RefreshSession
	filter := bson.M{"user_id": userID, "token_hash": tokenHash}
	err := r.sessions.FindOne(ctx, filter).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error finding refresh session")
		return nil, err
	}
	return &session, nil
}

// FindLatestByUser returns the most recently issued session for the user.
// Ordering is issued_at descending with _id descending as the deterministic
// tie-break for sessions issued in the same instant.
func (r *RefreshSessionRepository) FindLatestByUser(ctx context.Context, userID string) (*domain.RefreshSession, error) {
	var session domain.RefreshSession
	opts := options.FindOne().SetSort(bson.D{{Key: "issued_at", Value: -1}, {Key: "_id", Value: -1}})
	err := r.sessions.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error finding latest refresh session")
		return nil, err
	}
	return &session, nil
}

// MarkRotated sets rotated_at, but only when it is still unset. A concurrent
// rotation that already claimed the record makes the filter miss, which is
// reported as domain.ErrSessionNotUpdatable.
func (r *RefreshSessionRepository) MarkRotated(ctx context.Context, id string) error {
	filter := bson.M{"_id": id, "rotated_at": nil}
	update := bson.M{"$set": bson.M{"rotated_at": time.Now().UTC()}}
	result, err := r.sessions.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Error().Err(err).Str("sessionID", id).Msg("Error marking refresh session rotated")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionNotUpdatable
	}
	return nil
}

// MarkRevoked sets revoked_at, but only when it is still unset.
func (r *RefreshSessionRepository) MarkRevoked(ctx context.Context, id string) error {
	filter := bson.M{"_id": id, "revoked_at": nil}
	update := bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}}
	result, err := r.sessions.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Error().Err(err).Str("sessionID", id).Msg("Error marking refresh session revoked")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionNotUpdatable
	}
	return nil
}

// RevokeAllActive revokes every non-revoked session of the user.
func (r *RefreshSessionRepository) RevokeAllActive(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"user_id": userID, "revoked_at": nil}
	update := bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}}
	result, err := r.sessions.UpdateMany(ctx, filter, update)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error revoking all refresh sessions")
		return 0, err
	}
	return result.ModifiedCount, nil
}

var _ domain.RefreshSessionRepository = (*RefreshSessionRepository)(nil)
