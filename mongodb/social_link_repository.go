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

// SocialLinkRepository implements domain.SocialLinkRepository. A unique index
// on (provider, provider_id) makes the store the arbiter of the create-user
// race: the loser's insert fails with a duplicate-key error, surfaced as
// domain.ErrDuplicateLink.
type SocialLinkRepository struct {
	links *mongo.Collection
}

// NewSocialLinkRepository creates a new SocialLinkRepository and ensures its
// indexes.
func NewSocialLinkRepository(ctx context.Context, db *mongo.Database) (domain.SocialLinkRepository, error) {
	repo := &SocialLinkRepository{
		links: db.Collection(SocialLinksCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create %s indexes: %w", SocialLinksCollection, err)
	}
	return repo, nil
}

func (r *SocialLinkRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			// One external identity maps to exactly one local user.
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "provider_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// To find all linked identities for a local user.
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := r.links.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return err
	}
	log.Info().Msgf("Indexes for %s collection ensured.", SocialLinksCollection)
	return nil
}

// CreateLink inserts a new binding. Returns domain.ErrDuplicateLink when the
// (provider, provider_id) pair is already taken.
func (r *SocialLinkRepository) CreateLink(ctx context.Context, link *domain.SocialLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	if _, err := r.links.InsertOne(ctx, link); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateLink
		}
		log.Error().Err(err).
			Str("provider", string(link.Provider)).
			Str("providerID", link.ProviderID).
			Msg("Error creating social link")
		return err
	}
	return nil
}

// FindLink returns the binding for (provider, providerID), or
// domain.ErrNotFound.
func (r *SocialLinkRepository) FindLink(ctx context.Context, provider domain.SocialProvider, providerID string) (*domain.SocialLink, error) {
	var link domain.SocialLink
	filter := bson.M{"provider": provider, "provider_id": providerID}
	err := r.links.FindOne(ctx, filter).Decode(&link)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).
			Str("provider", string(provider)).
			Str("providerID", providerID).
			Msg("Error finding social link")
		return nil, err
	}
	return &link, nil
}

var _ domain.SocialLinkRepository = (*SocialLinkRepository)(nil)
