package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/apiclient"
	"github.com/gitanomongolomon/gmm-site/internal/console"
	"github.com/gitanomongolomon/gmm-site/internal/events"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

const (
	watchRedraw      = 2 * time.Second
	streamRetryDelay = 5 * time.Second
)

var errNotLoggedIn = errors.New("not logged in; run gmmctl login")

// changeWatcher is the change stream of the site API.
type changeWatcher interface {
	Watch(ctx context.Context, fn func(events.ChangeEvent)) error
}

// liveView is one auto-refreshing screen.
type liveView struct {
	watcher     changeWatcher // nil disables push notifications; polling still runs
	collection  events.Collection
	notify      func()
	ended       <-chan struct{}
	fingerprint func() string
	draw        func() error
	retry       time.Duration
	logger      *zap.Logger
}

// run redraws until interrupted or until the session is rejected by either the poller
// or the change stream.
func (v liveView) run(ctx context.Context, errOut io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streamDone := make(chan error, 1)
	if v.watcher == nil {
		streamDone <- nil
	} else {
		go func() {
			err := followChanges(ctx, v.watcher, v.collection, v.notify, v.retry, errOut, v.logger)
			if err != nil {
				cancel()
			}
			streamDone <- err
		}()
	}
	go func() {
		select {
		case <-v.ended:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := redraw(ctx, watchRedraw, v.fingerprint, v.draw)
	cancel()
	streamErr := <-streamDone

	select {
	case <-v.ended:
		return console.ErrSessionEnded
	default:
	}
	if apperrors.HasCode(streamErr, apperrors.CodeUnauthorized) {
		return console.ErrSessionEnded
	}
	return err
}

// followChanges calls notify for every change to collection until ctx is done. A dropped
// stream is reported on errOut and reopened after retry. A rejected session ends the loop.
func followChanges(ctx context.Context, w changeWatcher, collection events.Collection, notify func(), retry time.Duration, errOut io.Writer, logger *zap.Logger) error {
	for {
		err := w.Watch(ctx, func(event events.ChangeEvent) {
			if event.Collection == collection {
				notify()
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			return err
		}
		if err == nil {
			err = errors.New("stream closed by server")
		}
		logger.Warn("change stream dropped; reconnecting", zap.String("collection", string(collection)), zap.Error(err))
		fmt.Fprintf(errOut, "change stream: %v; reconnecting in %s\n", err, retry)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

// newSessionClient is newClient for commands that need a saved admin session.
func newSessionClient() (*apiclient.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	if !client.HasToken() {
		return nil, errNotLoggedIn
	}
	return client, nil
}

// endSession drops the saved token after the server rejected it.
func endSession(cmd *cobra.Command, err error) error {
	if !errors.Is(err, console.ErrSessionEnded) {
		return err
	}
	if path, pathErr := apiclient.SessionPath(); pathErr == nil {
		_ = apiclient.ClearToken(path)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "session ended; run gmmctl login to continue")
	return err
}
