// Package session persists the backend auth session across restarts and keeps
// its access token fresh.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/hirotachi/the-void/pkg/utils"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RefreshMargin is how long before expiry a token is refreshed.
const RefreshMargin = 60 * time.Second

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

func (s *Session) expiresWithin(now time.Time, d time.Duration) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.Add(d).Unix() >= s.ExpiresAt
}

type Manager struct {
	Storage    Storage
	Key        string
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	log        logrus.FieldLogger
	now        func() time.Time

	mu      sync.Mutex
	session *Session
}

func NewManager(storage Storage, baseURL, apiKey string, httpClient *http.Client, log logrus.FieldLogger) *Manager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Manager{
		Storage:    storage,
		Key:        utils.SessionStorageKey(baseURL),
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: httpClient,
		log:        log,
		now:        time.Now,
	}
}

// Load restores the persisted session, if any. Unreadable or corrupt
// entries are treated as no session.
func (m *Manager) Load(ctx context.Context) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok, err := m.Storage.GetItem(ctx, m.Key)
	if err != nil {
		m.log.WithError(err).Debug("could not read persisted session")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.AccessToken == "" {
		m.log.WithError(err).Warn("discarding unreadable persisted session")
		m.removeItem(ctx)
		return nil
	}
	m.session = &s
	return m.current()
}

func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current()
}

func (m *Manager) current() *Session {
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// Save stores s as the active session and persists it.
func (m *Manager) Save(ctx context.Context, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.save(ctx, s)
}

func (m *Manager) save(ctx context.Context, s *Session) {
	copied := *s
	if copied.ExpiresAt == 0 && copied.ExpiresIn > 0 {
		copied.ExpiresAt = m.now().Unix() + copied.ExpiresIn
	}
	m.session = &copied
	data, err := json.Marshal(&copied)
	if err != nil {
		m.log.WithError(err).Error("could not marshal session")
		return
	}
	if err := m.Storage.SetItem(ctx, m.Key, string(data)); err != nil {
		m.log.WithError(err).Error("error setting item")
	}
}

func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.removeItem(ctx)
}

func (m *Manager) removeItem(ctx context.Context) {
	if err := m.Storage.RemoveItem(ctx, m.Key); err != nil {
		m.log.WithError(err).Error("error removing item")
	}
}

// AccessToken returns the bearer token for data requests. Without a session
// this is the API key. A session close to expiry is refreshed first; when the
// refresh fails the session is dropped and the API key is used.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return m.APIKey, nil
	}
	if m.session.expiresWithin(m.now(), RefreshMargin) {
		if m.session.RefreshToken == "" {
			m.session = nil
			m.removeItem(ctx)
			return m.APIKey, nil
		}
		refreshed, err := m.refresh(ctx, m.session.RefreshToken)
		if err != nil {
			m.log.WithError(err).Warn("session refresh failed, signing out")
			m.session = nil
			m.removeItem(ctx)
			return m.APIKey, nil
		}
		m.save(ctx, refreshed)
	}
	return m.session.AccessToken, nil
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}
	endpoint := m.BaseURL + utils.AuthTokenPath + "?grant_type=refresh_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(utils.APIKeyHeader, m.APIKey)

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refresh rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not decode refreshed session: %w", err)
	}
	if s.AccessToken == "" {
		return nil, fmt.Errorf("refresh response has no access token")
	}
	return &s, nil
}
