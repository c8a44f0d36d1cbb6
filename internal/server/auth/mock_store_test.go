package auth

import (
	"context"
	"sync"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// mockStore is an in-memory CredentialStore with the same flag semantics as the SQL backends.
type mockStore struct {
	mu      sync.Mutex
	users   map[string]*models.User // by email
	records []*models.TokenRecord

	getUserErr error
	issueErr   error
	rotateErr  error
}

func newMockStore() *mockStore {
	return &mockStore{users: make(map[string]*models.User)}
}

func (m *mockStore) CreateUser(ctx context.Context, user *models.User, record *models.TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Email]; ok {
		return storage.ErrUserAlreadyExists
	}
	u := *user
	m.users[user.Email] = &u
	if record != nil {
		r := *record
		m.records = append(m.records, &r)
	}
	return nil
}

func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getUserErr != nil {
		return nil, m.getUserErr
	}
	u, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockStore) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockStore) revokeUser(userID string) {
	for _, r := range m.records {
		if r.UserID == userID {
			r.Expired, r.Revoked, r.RefreshRevoked = true, true, true
		}
	}
}

func (m *mockStore) IssueToken(ctx context.Context, record *models.TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.issueErr != nil {
		return m.issueErr
	}
	m.revokeUser(record.UserID)
	r := *record
	m.records = append(m.records, &r)
	return nil
}

func (m *mockStore) RotateToken(ctx context.Context, consumedID string, record *models.TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rotateErr != nil {
		return m.rotateErr
	}
	for _, r := range m.records {
		if r.ID == consumedID && r.UserID == record.UserID && !r.RefreshRevoked {
			r.RefreshRevoked = true
			m.revokeUser(record.UserID)
			cp := *record
			m.records = append(m.records, &cp)
			return nil
		}
	}
	return storage.ErrTokenConsumed
}

func (m *mockStore) GetTokenByAccess(ctx context.Context, accessToken string) (*models.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.AccessToken == accessToken {
			cp := *r
			return &cp, nil
		}
	}
	return nil, storage.ErrTokenNotFound
}

func (m *mockStore) GetActiveTokenByRefresh(ctx context.Context, refreshToken string) (*models.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.RefreshToken == refreshToken && !r.RefreshRevoked {
			cp := *r
			return &cp, nil
		}
	}
	return nil, storage.ErrTokenNotFound
}

func (m *mockStore) RevokeToken(ctx context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.ID == recordID {
			r.Expired, r.Revoked, r.RefreshRevoked = true, true, true
			return nil
		}
	}
	return storage.ErrTokenNotFound
}

func (m *mockStore) ListUserTokens(ctx context.Context, userID string) ([]*models.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.TokenRecord, 0)
	for _, r := range m.records {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *mockStore) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
