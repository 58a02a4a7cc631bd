package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/internal/events"
	"github.com/nikobathrooms/niko-auth-gateway/internal/supabase"
	"github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

// AuthProvider is the slice of the Supabase client the store depends on.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*supabase.AuthResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.AuthResult, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// ProviderEventType mirrors the auth provider's state-change stream.
type ProviderEventType string

const (
	ProviderSignedIn       ProviderEventType = "SIGNED_IN"
	ProviderSignedOut      ProviderEventType = "SIGNED_OUT"
	ProviderTokenRefreshed ProviderEventType = "TOKEN_REFRESHED"
)

// Store is the single source of truth for who is logged in and with what
// role, reconciled against the auth provider. Explicit operations and the
// provider's own state-change stream must not double-process the same
// transition; the in-flight set arbitrates between them.
type Store struct {
	provider   AuthProvider
	cache      Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewStore builds the session store.
func NewStore(provider AuthProvider, cache Cache, dispatcher events.Dispatcher, logger *zap.Logger) *Store {
	return &Store{
		provider:   provider,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		inFlight:   make(map[string]struct{}),
	}
}

// Login authenticates with the provider's password grant. The provider's
// literal error message is passed through untouched.
func (s *Store) Login(ctx context.Context, email, password string) (domain.Session, *supabase.TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Guest(), nil, util.NewValidationError("email and password are required", nil)
	}

	release, err := s.begin(email)
	if err != nil {
		return domain.Guest(), nil, err
	}
	defer release()

	result, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return domain.Guest(), nil, err
	}

	sess := s.sessionFromUser(result.User)
	if err := s.cache.Set(ctx, sess); err != nil {
		s.logger.Warn("session snapshot cache write failed", zap.Error(err))
	}
	s.publish(ctx, events.EventSignedIn, events.OriginLocal, sess)
	return sess, result.Tokens, nil
}

// Register creates a new account with display name and role metadata. The
// CMS profile write-through is triggered by the published event; its
// failure never reaches this caller.
func (s *Store) Register(ctx context.Context, email, password, displayName string, role domain.Role) (domain.Session, *supabase.TokenPair, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" || password == "" || displayName == "" {
		return domain.Guest(), nil, util.NewValidationError("name, email and password are required", nil)
	}
	if len(password) < 6 {
		return domain.Guest(), nil, util.NewValidationError("password must be at least 6 characters long", nil)
	}
	if !role.Valid() {
		return domain.Guest(), nil, util.NewValidationError("role must be Customer or Retailer", nil)
	}

	release, err := s.begin(email)
	if err != nil {
		return domain.Guest(), nil, err
	}
	defer release()

	metadata := map[string]any{
		"name":      displayName,
		"user_type": string(role),
		"role":      string(role),
	}
	result, err := s.provider.SignUp(ctx, email, password, metadata)
	if err != nil {
		return domain.Guest(), nil, err
	}

	sess := s.sessionFromUser(result.User)
	if sess.DisplayName == "" {
		sess.DisplayName = displayName
	}
	sess.Role = role
	if err := s.cache.Set(ctx, sess); err != nil {
		s.logger.Warn("session snapshot cache write failed", zap.Error(err))
	}
	s.publish(ctx, events.EventSignedUp, events.OriginLocal, sess)
	return sess, result.Tokens, nil
}

// Logout revokes the provider session. The local snapshot is cleared even
// when the provider call fails so the storefront never sticks in a
// logged-in state.
func (s *Store) Logout(ctx context.Context, accessToken, userID, email string) error {
	subject := strings.TrimSpace(email)
	if subject == "" {
		subject = "logout:" + userID
	}
	release, err := s.begin(subject)
	if err != nil {
		return err
	}
	defer release()

	signOutErr := s.provider.SignOut(ctx, accessToken)

	if userID != "" {
		if err := s.cache.Delete(ctx, userID); err != nil {
			s.logger.Warn("session snapshot cache clear failed", zap.Error(err))
		}
	}
	s.publish(ctx, events.EventSignedOut, events.OriginLocal, domain.Guest())

	return signOutErr
}

// Verify resolves the current session for an access token. A snapshot
// younger than SnapshotTTL short-circuits the provider query; anything
// older is discarded. Provider errors resolve to guest, never to a stale
// authenticated view.
func (s *Store) Verify(ctx context.Context, accessToken, userIDHint string) domain.Session {
	if accessToken == "" {
		return domain.Guest()
	}

	if userIDHint != "" {
		cached, ok, err := s.cache.Get(ctx, userIDHint)
		if err != nil {
			s.logger.Warn("session snapshot cache read failed", zap.Error(err))
		} else if ok && !cached.Stale(s.now(), SnapshotTTL) {
			return cached
		}
	}

	user, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		if userIDHint != "" {
			_ = s.cache.Delete(ctx, userIDHint)
		}
		s.logger.Debug("session verification failed", zap.Error(err))
		return domain.Guest()
	}

	sess := s.sessionFromUser(user)
	if err := s.cache.Set(ctx, sess); err != nil {
		s.logger.Warn("session snapshot cache write failed", zap.Error(err))
	}
	return sess
}

// HandleProviderEvent processes an event from the provider's state-change
// stream. Events for a subject whose explicit transition is still in
// flight are suppressed: the operation's own success path already handles
// that transition, and processing both is how redirect loops start.
func (s *Store) HandleProviderEvent(ctx context.Context, eventType ProviderEventType, user *supabase.User) error {
	subject := ""
	if user != nil {
		subject = strings.TrimSpace(user.Email)
	}
	if subject != "" && s.transitionInFlight(subject) {
		s.logger.Debug("provider event suppressed during in-flight transition",
			zap.String("event", string(eventType)),
			zap.String("email", subject))
		return nil
	}

	switch eventType {
	case ProviderSignedIn:
		if user == nil {
			return util.NewValidationError("signed-in event requires a user", nil)
		}
		sess := s.sessionFromUser(user)
		if err := s.cache.Set(ctx, sess); err != nil {
			s.logger.Warn("session snapshot cache write failed", zap.Error(err))
		}
		s.publish(ctx, events.EventSignedIn, events.OriginProvider, sess)
	case ProviderSignedOut:
		if user != nil && user.ID != "" {
			if err := s.cache.Delete(ctx, user.ID); err != nil {
				s.logger.Warn("session snapshot cache clear failed", zap.Error(err))
			}
		}
		s.publish(ctx, events.EventSignedOut, events.OriginProvider, domain.Guest())
	case ProviderTokenRefreshed:
		// no identity or role change; nothing to reconcile
	default:
		return util.NewValidationError("unknown provider event type", map[string]any{"type": string(eventType)})
	}
	return nil
}

// OnChange subscribes to all session transitions. The returned function
// removes the subscription.
func (s *Store) OnChange(handler func(context.Context, events.Event)) (unsubscribe func()) {
	wrapped := func(ctx context.Context, event events.Event) error {
		handler(ctx, event)
		return nil
	}

	unsubs := make([]func(), 0, 4)
	for _, eventType := range []events.EventType{
		events.EventSignedIn,
		events.EventSignedUp,
		events.EventSignedOut,
		events.EventTokenRefreshed,
	} {
		unsubs = append(unsubs, s.dispatcher.Subscribe(eventType, wrapped))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// begin marks a transition in flight for the subject. A second call before
// release fails without touching the provider, which is the double-submit
// guard: two submissions, one provider call.
func (s *Store) begin(subject string) (release func(), err error) {
	key := strings.ToLower(subject)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return nil, util.NewConflict("an authentication request is already in progress", nil)
	}
	s.inFlight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inFlight, key)
	}, nil
}

func (s *Store) transitionInFlight(subject string) bool {
	key := strings.ToLower(strings.TrimSpace(subject))
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[key]
	return busy
}

func (s *Store) sessionFromUser(user *supabase.User) domain.Session {
	return domain.Session{
		UserID:        user.ID,
		Email:         user.Email,
		DisplayName:   DisplayName(user.Metadata),
		Role:          ResolveRole(user.Metadata),
		Authenticated: true,
		VerifiedAt:    s.now(),
	}
}

func (s *Store) publish(ctx context.Context, eventType events.EventType, origin events.Origin, sess domain.Session) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Origin:    origin,
		Session:   sess,
		Timestamp: s.now(),
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}
