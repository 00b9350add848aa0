package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pilab-dev/kauth/domain"
)

// In-memory repository fakes. Mutations take the store mutex, so conditional
// updates behave like the real store's atomic updates under contention.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

type linkKey struct {
	provider   domain.SocialProvider
	providerID string
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[linkKey]*domain.SocialLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[linkKey]*domain.SocialLink)}
}

func (r *fakeLinkRepo) CreateLink(_ context.Context, link *domain.SocialLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := linkKey{provider: link.Provider, providerID: link.ProviderID}
	if _, exists := r.links[key]; exists {
		return domain.ErrDuplicateLink
	}
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	cp := *link
	r.links[key] = &cp
	return nil
}

func (r *fakeLinkRepo) FindLink(_ context.Context, provider domain.SocialProvider, providerID string) (*domain.SocialLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[linkKey{provider: provider, providerID: providerID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.RefreshSession
	seq      int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.RefreshSession)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session *domain.RefreshSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	r.seq++
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) FindByUserAndHash(_ context.Context, userID, tokenHash string) (*domain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.TokenHash == tokenHash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeSessionRepo) FindLatestByUser(_ context.Context, userID string) (*domain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.RefreshSession
	for _, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.IssuedAt.After(latest.IssuedAt) ||
			(s.IssuedAt.Equal(latest.IssuedAt) && s.ID > latest.ID) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeSessionRepo) MarkRotated(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.RotatedAt != nil {
		return domain.ErrSessionNotUpdatable
	}
	now := time.Now().UTC()
	s.RotatedAt = &now
	return nil
}

func (r *fakeSessionRepo) MarkRevoked(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.RevokedAt != nil {
		return domain.ErrSessionNotUpdatable
	}
	now := time.Now().UTC()
	s.RevokedAt = &now
	return nil
}

func (r *fakeSessionRepo) RevokeAllActive(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			ts := now
			s.RevokedAt = &ts
			n++
		}
	}
	return n, nil
}

// mutateSession lets tests rewrite a stored record, e.g. to back-date expiry.
func (r *fakeSessionRepo) mutateSession(id string, fn func(*domain.RefreshSession)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		fn(s)
	}
}

func (r *fakeSessionRepo) sessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

var (
	_ domain.UserRepository           = (*fakeUserRepo)(nil)
	_ domain.SocialLinkRepository     = (*fakeLinkRepo)(nil)
	_ domain.RefreshSessionRepository = (*fakeSessionRepo)(nil)
)
