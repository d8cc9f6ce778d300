package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/satonic/satonic-storefront/internal/creation"
	"github.com/satonic/satonic-storefront/internal/models"
)

// ErrSessionNotFound is returned for session ids that are not open
var ErrSessionNotFound = errors.New("session not found")

// CreationService owns the open creation sessions
type CreationService struct {
	opts        creation.SessionOptions
	tokens      *TokenService
	idleTimeout time.Duration
	logger      zerolog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*creation.Session
}

// NewCreationService creates a new CreationService. Every session it opens
// shares the collaborators in opts.
func NewCreationService(opts creation.SessionOptions, tokens *TokenService, idleTimeout time.Duration) *CreationService {
	return &CreationService{
		opts:        opts,
		tokens:      tokens,
		idleTimeout: idleTimeout,
		logger:      opts.Logger.With().Str("component", "creation_service").Logger(),
		now:         time.Now,
		sessions:    make(map[string]*creation.Session),
	}
}

// Start opens a new session and issues its token
func (s *CreationService) Start() (*creation.Session, models.SessionToken, error) {
	id := uuid.New().String()
	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, models.SessionToken{}, err
	}

	session := creation.NewSession(id, s.opts)
	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	s.logger.Info().Str("session_id", id).Msg("session started")
	return session, token, nil
}

// Get returns an open session
func (s *CreationService) Get(id string) (*creation.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Resume returns the session behind a valid token. A session that was
// evicted is reopened empty under the same id so its draft can be loaded.
func (s *CreationService) Resume(token string) (*creation.Session, error) {
	id, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	session := creation.NewSession(id, s.opts)
	s.sessions[id] = session
	s.logger.Info().Str("session_id", id).Msg("session reopened")
	return session, nil
}

// Len returns the number of open sessions
func (s *CreationService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle closes sessions that have been idle longer than the idle
// timeout. Sessions with a submission in flight are kept.
func (s *CreationService) EvictIdle() int {
	if s.idleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	var idle []*creation.Session
	for id, session := range s.sessions {
		if session.IsSubmitting() || session.LastActive().After(cutoff) {
			continue
		}
		idle = append(idle, session)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, session := range idle {
		session.Close()
		s.logger.Debug().Str("session_id", session.ID()).Msg("idle session closed")
	}
	return len(idle)
}

// Run evicts idle sessions every interval until ctx is done, then closes
// every open session
func (s *CreationService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				s.logger.Info().Int("closed", n).Msg("evicted idle sessions")
			}
		}
	}
}

// CloseAll closes and forgets every open session
func (s *CreationService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*creation.Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
