package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/internal/events"
)

// ProfileWriter is the slice of the CMS relay client the sync needs.
type ProfileWriter interface {
	CreateProfile(ctx context.Context, externalAuthID, email, displayName string, role domain.Role) (string, error)
}

// ProfileSyncService mirrors new registrations into the Webflow CMS.
// Writes are best-effort: a relay failure is logged and dropped, never
// surfaced to the registration that triggered it.
type ProfileSyncService struct {
	dispatcher events.Dispatcher
	writer     ProfileWriter
	logger     *zap.Logger
	timeout    time.Duration

	registerOnce sync.Once
	wg           sync.WaitGroup
}

// NewProfileSyncService creates the service.
func NewProfileSyncService(dispatcher events.Dispatcher, writer ProfileWriter, logger *zap.Logger) *ProfileSyncService {
	return &ProfileSyncService{
		dispatcher: dispatcher,
		writer:     writer,
		logger:     logger,
		timeout:    15 * time.Second,
	}
}

// RegisterHandlers subscribes to sign-up events. Safe to call more than
// once; only the first call installs the listener.
func (p *ProfileSyncService) RegisterHandlers() {
	if p.dispatcher == nil {
		return
	}
	p.registerOnce.Do(func() {
		p.dispatcher.Subscribe(events.EventSignedUp, p.handleSignedUp)
	})
}

// Wait blocks until in-flight profile writes finish. Used by shutdown and
// by tests; the sign-up path never calls it.
func (p *ProfileSyncService) Wait() {
	p.wg.Wait()
}

func (p *ProfileSyncService) handleSignedUp(_ context.Context, event events.Event) error {
	sess := event.Session
	if sess.UserID == "" {
		return nil
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Detached from the request context: the registration response must
		// not wait on, or fail because of, the CMS write.
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		profileID, err := p.writer.CreateProfile(ctx, sess.UserID, sess.Email, sess.DisplayName, sess.Role)
		if err != nil {
			p.logger.Warn("cms profile creation failed",
				zap.String("user_id", sess.UserID),
				zap.String("role", string(sess.Role)),
				zap.Error(err))
			return
		}
		p.logger.Info("cms profile created",
			zap.String("user_id", sess.UserID),
			zap.String("profile_id", profileID))
	}()
	return nil
}
