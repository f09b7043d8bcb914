package magento

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/connector/base"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/metrics"
	"github.com/ajitpratap0/magesync/pkg/observability"
)

// DefaultSessionTimeout is how long a session may be used after login
const DefaultSessionTimeout = 300 * time.Second

// SessionState is the gateway connection state
type SessionState int

const (
	// SessionUnconnected means no login has happened yet
	SessionUnconnected SessionState = iota
	// SessionConnected means the token is within its idle timeout
	SessionConnected
	// SessionExpired means the token must be replaced before the next call
	SessionExpired
)

func (s SessionState) String() string {
	switch s {
	case SessionConnected:
		return "connected"
	case SessionExpired:
		return "expired"
	default:
		return "unconnected"
	}
}

// Session is an opaque token with the time it was issued
type Session struct {
	Token    string
	IssuedAt time.Time
	Timeout  time.Duration
}

// State reports the session state at now
func (s *Session) State(now time.Time) SessionState {
	if s == nil || s.Token == "" {
		return SessionUnconnected
	}
	if now.Sub(s.IssuedAt) > s.Timeout {
		return SessionExpired
	}
	return SessionConnected
}

// NotYetAvailable retries only faults saying the entity does not exist yet,
// which the API reports while replicas catch up
func NotYetAvailable(err error) bool {
	var f *Fault
	return stderrors.As(err, &f) && strings.Contains(f.Message, "not exists.")
}

// AnyTransient retries every remote fault and every connection failure
func AnyTransient(err error) bool {
	var f *Fault
	if stderrors.As(err, &f) {
		return true
	}
	return errors.IsRetryable(err)
}

// RetryFilter returns the named fault filter
func RetryFilter(name string) func(error) bool {
	if name == "any" {
		return AnyTransient
	}
	return NotYetAvailable
}

// GatewayOption customizes a Gateway
type GatewayOption func(*Gateway)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// WithSessionTimeout sets the session idle timeout
func WithSessionTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// WithLogger sets the gateway logger
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// Gateway owns the session with the source and wraps every call in the retry policy.
// It is not safe for concurrent use; one run owns one gateway.
type Gateway struct {
	transport Transport
	user      string
	key       string
	policy    *base.RetryPolicy
	timeout   time.Duration
	now       func() time.Time
	session   *Session
	logger    *zap.Logger
}

// NewGateway creates a gateway. No login happens until the first call.
func NewGateway(transport Transport, user, key string, policy *base.RetryPolicy, opts ...GatewayOption) *Gateway {
	if policy == nil {
		policy = base.DefaultRetryPolicy().WithFilter(NotYetAvailable)
	}
	g := &Gateway{
		transport: transport,
		user:      user,
		key:       key,
		policy:    policy,
		timeout:   DefaultSessionTimeout,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(zap.String("component", "magento_gateway"))
	return g
}

// State reports the current session state
func (g *Gateway) State() SessionState {
	return g.session.State(g.now())
}

// Call invokes method with the session token prepended to args
func (g *Gateway) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	ctx, span := observability.StartSpan(ctx, "magento.call", "rpc.method", method)

	result, err := g.call(ctx, method, args)

	if err != nil {
		metrics.SourceCalls.WithLabelValues(method, metrics.OutcomeFailure).Inc()
	} else {
		metrics.SourceCalls.WithLabelValues(method, metrics.OutcomeSuccess).Inc()
	}
	observability.EndSpan(span, err)
	return result, err
}

func (g *Gateway) call(ctx context.Context, method string, args []any) (json.RawMessage, error) {
	if err := g.ensureSession(ctx); err != nil {
		return nil, err
	}

	// a failed re-login ends the call whatever the fault filter says
	var loginErr error
	retry := g.policy.ShouldRetry
	policy := g.policy.WithFilter(func(err error) bool {
		if loginErr != nil {
			return false
		}
		return retry == nil || retry(err)
	})

	var result json.RawMessage
	relogged := false
	attempts, err := policy.ExecuteCounted(ctx, func() error {
		if g.session == nil {
			if loginErr = g.login(ctx, g.policy.WithMaxAttempts(1)); loginErr != nil {
				return loginErr
			}
		}
		params := append([]any{g.session.Token}, args...)
		res, err := g.transport.Invoke(ctx, method, params)
		if err != nil {
			var f *Fault
			if !relogged && stderrors.As(err, &f) && f.Code == FaultSessionExpired {
				// the server dropped the session early; replace it once and retry in place
				relogged = true
				g.logger.Info("session dropped by server", zap.String("method", method))
				if loginErr = g.login(ctx, g.policy.WithMaxAttempts(1)); loginErr != nil {
					return loginErr
				}
				params[0] = g.session.Token
				res, err = g.transport.Invoke(ctx, method, params)
			}
		}
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if attempts > 1 {
		metrics.SourceRetries.WithLabelValues(method).Add(float64(attempts - 1))
	}
	if loginErr != nil {
		return nil, loginErr
	}
	if err != nil {
		return nil, g.classify(err, method, attempts)
	}
	return result, nil
}

// ensureSession logs in when unconnected or expired
func (g *Gateway) ensureSession(ctx context.Context) error {
	state := g.session.State(g.now())
	if state == SessionConnected {
		return nil
	}
	g.logger.Debug("opening session", zap.Stringer("state", state))
	return g.login(ctx, g.policy)
}

// login replaces the session. On failure the gateway is left unconnected.
func (g *Gateway) login(ctx context.Context, policy *base.RetryPolicy) error {
	g.session = nil
	var token string
	attempts, err := policy.ExecuteCounted(ctx, func() error {
		res, err := g.transport.Invoke(ctx, "login", []any{g.user, g.key})
		if err != nil {
			return err
		}
		if err := json.Unmarshal(res, &token); err != nil || token == "" {
			return errors.New(errors.ErrorTypeAuthentication, "login returned no session token")
		}
		return nil
	})
	if err != nil {
		cerr := g.classify(err, "login", attempts)
		return errors.Wrap(cerr, errors.ErrorTypeAuthentication, "source login failed")
	}

	g.session = &Session{Token: token, IssuedAt: g.now(), Timeout: g.timeout}
	metrics.SourceReconnects.Inc()
	return nil
}

func (g *Gateway) classify(err error, method string, attempts int) error {
	if base.IsExhausted(err) {
		g.logger.Warn("remote call exhausted retries",
			zap.String("method", method),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return errors.Wrap(err, errors.ErrorTypeTransient, method+" failed").WithDetail("attempts", attempts)
	}
	return errors.Wrap(err, errors.ErrorTypePermanent, method+" failed").WithDetail("attempts", attempts)
}
