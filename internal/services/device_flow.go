package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/events"
	"gitpilot/internal/models"
)

// DeviceFlowState is the poller lifecycle: idle until a code is
// requested, polling until a terminal answer, then done/denied/expired.
type DeviceFlowState string

const (
	DeviceIdle    DeviceFlowState = "idle"
	DevicePolling DeviceFlowState = "polling"
	DeviceDone    DeviceFlowState = "done"
	DeviceDenied  DeviceFlowState = "denied"
	DeviceExpired DeviceFlowState = "expired"
)

// sessionSink is the session controller as the poller sees it: the
// attempt is announced up front, then either adopts a session or is
// abandoned.
type sessionSink interface {
	BeginHandshake() error
	AdoptSession(sess *models.Session) (AuthSnapshot, error)
	AbandonHandshake(reason string)
}

// DeviceFlowService drives the OAuth device flow: request a user code,
// show it, and poll at the server-provided interval until the user
// authorizes, denies, or the code expires. At most one poller runs per
// attempt; pending responses are never treated as errors.
type DeviceFlowService struct {
	ctx  context.Context
	api  *apiclient.Client
	auth sessionSink

	mu     sync.Mutex
	state  DeviceFlowState
	cancel context.CancelFunc

	// minInterval floors the server-provided polling interval; tests
	// shrink it.
	minInterval time.Duration
}

func NewDeviceFlowService(api *apiclient.Client, auth sessionSink) *DeviceFlowService {
	return &DeviceFlowService{
		api:         api,
		auth:        auth,
		state:       DeviceIdle,
		minInterval: time.Second,
	}
}

func (s *DeviceFlowService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// State returns the current poller state.
func (s *DeviceFlowService) State() DeviceFlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin requests a device code and starts polling. The returned
// authorization carries the user code and verification URL to display.
// Calling Begin while a poll is already running is an error; the caller
// cancels first.
func (s *DeviceFlowService) Begin(ctx context.Context) (*models.DeviceAuthorization, error) {
	s.mu.Lock()
	if s.state == DevicePolling {
		s.mu.Unlock()
		return nil, errors.New("device authorization already in progress")
	}
	s.state = DeviceIdle
	s.mu.Unlock()

	auth, err := s.api.RequestDeviceCode(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.BeginHandshake(); err != nil {
		return nil, err
	}

	interval := time.Duration(auth.Interval) * time.Second
	if interval < s.minInterval {
		interval = s.minInterval
	}
	deadline := deviceDeadline(auth.ExpiresIn)

	pollCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.state == DevicePolling {
		s.mu.Unlock()
		cancel()
		return nil, errors.New("device authorization already in progress")
	}
	s.state = DevicePolling
	s.cancel = cancel
	s.mu.Unlock()

	if s.ctx != nil {
		evt := events.NewInfo("enter this code at " + auth.VerificationURI)
		evt.Metadata = map[string]string{"userCode": auth.UserCode, "verificationUri": auth.VerificationURI}
		events.Emit(s.ctx, events.AuthDeviceCode, evt)
	}

	go s.poll(pollCtx, auth.DeviceCode, interval, deadline)
	return auth, nil
}

// poll ticks at the server interval until a terminal outcome. The single
// ticker is the only recurring timer in the app; it stops on success,
// terminal failure, expiry, and cancellation.
func (s *DeviceFlowService) poll(ctx context.Context, deviceCode string, interval time.Duration, deadline time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finish(DeviceIdle, "")
			return
		case <-ticker.C:
			if time.Now().After(deadline) {
				s.finish(DeviceExpired, "device code expired")
				return
			}

			sess, err := s.api.PollDevice(ctx, deviceCode)
			if err == nil {
				if _, adoptErr := s.auth.AdoptSession(sess); adoptErr != nil {
					s.finish(DeviceDenied, adoptErr.Error())
					return
				}
				s.finish(DeviceDone, "")
				return
			}
			if errors.Is(err, apiclient.ErrDevicePending) {
				continue
			}
			if ctx.Err() != nil {
				s.finish(DeviceIdle, "")
				return
			}

			var apiErr *apiclient.APIError
			if errors.As(err, &apiErr) && apiErr.Status == 0 {
				// Transport blip: keep polling, the code is
				// still live server-side.
				continue
			}
			if isExpiredMessage(err) {
				s.finish(DeviceExpired, err.Error())
				return
			}
			s.finish(DeviceDenied, err.Error())
			return
		}
	}
}

// defaultDeviceTTL bounds polling when the server omits expires_in, so
// the poller always terminates even through endless transport failures.
const defaultDeviceTTL = 15 * time.Minute

func deviceDeadline(expiresIn int) time.Time {
	ttl := defaultDeviceTTL
	if expiresIn > 0 {
		ttl = time.Duration(expiresIn) * time.Second
	}
	return time.Now().Add(ttl)
}

func isExpiredMessage(err error) bool {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Message {
	case "expired_token", "expired":
		return true
	}
	return false
}

func (s *DeviceFlowService) finish(state DeviceFlowState, reason string) {
	s.mu.Lock()
	s.state = state
	s.cancel = nil
	s.mu.Unlock()

	// Every outcome but success leaves the session controller back at
	// unauthenticated.
	if state != DeviceDone {
		s.auth.AbandonHandshake(reason)
	}

	if s.ctx == nil {
		return
	}
	switch state {
	case DeviceDone:
		events.Emit(s.ctx, events.AuthDeviceDone, events.NewSuccess("device authorization complete"))
	case DeviceDenied, DeviceExpired:
		events.Emit(s.ctx, events.AuthDeviceError, events.NewError(fmt.Sprintf("device authorization failed: %s", reason)))
	}
}

// Cancel stops the active poller, if any. Safe to call at any point;
// also invoked on logout and app shutdown.
func (s *DeviceFlowService) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
