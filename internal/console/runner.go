package console

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/poller"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// ErrSessionEnded is reported once the store rejects the operator's session.
var ErrSessionEnded = errors.New("admin session ended; log in again")

// runner owns one background refresher that can be started and stopped repeatedly.
// A refresh rejected as unauthorized tears the refresher down and closes the ended channel.
type runner struct {
	name     string
	refresh  poller.RefreshFunc
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	refresher *poller.Refresher
	cancel    context.CancelFunc
	done      chan struct{}
	ended     chan struct{}
	revoked   bool
}

func (r *runner) start(parent context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	if r.ended == nil || r.revoked {
		r.ended = make(chan struct{})
		r.revoked = false
	}
	ctx, cancel := context.WithCancel(parent)
	refresher := poller.New(r.name, r.guarded, r.interval, r.logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		refresher.Run(ctx)
	}()
	r.refresher, r.cancel, r.done = refresher, cancel, done
}

func (r *runner) guarded(ctx context.Context) error {
	err := r.refresh(ctx)
	if sessionRejected(err) {
		r.revoke()
		return ErrSessionEnded
	}
	return err
}

// revoke runs on the refresher goroutine, so it cancels without waiting for done.
func (r *runner) revoke() {
	r.mu.Lock()
	cancel := r.cancel
	if cancel == nil {
		r.mu.Unlock()
		return
	}
	r.refresher, r.cancel = nil, nil
	r.revoked = true
	close(r.ended)
	r.mu.Unlock()

	cancel()
	r.logger.Warn("session rejected; polling stopped", zap.String("refresher", r.name))
}

// stop cancels the refresher and waits for it to exit. A refresh in flight is discarded
// because its context is already cancelled when it returns.
func (r *runner) stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.refresher, r.cancel, r.done = nil, nil, nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (r *runner) trigger() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refresher == nil {
		return false
	}
	r.refresher.Trigger()
	return true
}

func (r *runner) running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// sessionEnded returns a channel closed when the current run is torn down by an
// unauthorized refresh.
func (r *runner) sessionEnded() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended == nil {
		r.ended = make(chan struct{})
	}
	return r.ended
}

func sessionRejected(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		return true
	}
	var domainErr *apperrors.DomainError
	return errors.As(err, &domainErr) && domainErr.HTTPStatus == http.StatusUnauthorized
}
