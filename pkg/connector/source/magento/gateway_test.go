package magento

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/magesync/pkg/connector/base"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/testutil"
)

type invocation struct {
	method string
	params []any
}

// fakeTransport answers login with numbered tokens and every other method with respond
type fakeTransport struct {
	calls   []invocation
	logins  int
	respond func(method string, params []any) (json.RawMessage, error)
}

func (f *fakeTransport) Invoke(_ context.Context, method string, params []any) (json.RawMessage, error) {
	f.calls = append(f.calls, invocation{method: method, params: params})
	if method == "login" {
		f.logins++
		return json.RawMessage(`"token-` + string(rune('0'+f.logins)) + `"`), nil
	}
	if f.respond == nil {
		return json.RawMessage(`true`), nil
	}
	return f.respond(method, params)
}

func (f *fakeTransport) methods() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.method)
	}
	return out
}

func newTestGateway(t *testing.T, tr Transport, policy *base.RetryPolicy, clock *testutil.Clock) *Gateway {
	return NewGateway(tr, "user", "secret", policy,
		WithClock(clock.Now),
		WithLogger(testutil.TestLogger(t)))
}

func TestGatewayLogsInLazily(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	tr := &fakeTransport{}
	g := newTestGateway(t, tr, base.NoRetryPolicy(), clock)

	assert.Equal(t, SessionUnconnected, g.State())
	assert.Empty(t, tr.calls)

	_, err := g.Call(context.Background(), "storeList")
	require.NoError(t, err)

	assert.Equal(t, SessionConnected, g.State())
	assert.Equal(t, []string{"login", "storeList"}, tr.methods())
	assert.Equal(t, []any{"user", "secret"}, tr.calls[0].params)
	assert.Equal(t, []any{"token-1"}, tr.calls[1].params)
}

func TestGatewayPrependsSessionToken(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	tr := &fakeTransport{}
	g := newTestGateway(t, tr, base.NoRetryPolicy(), clock)

	_, err := g.Call(context.Background(), "call", "order.info", "100000001")
	require.NoError(t, err)

	assert.Equal(t, []any{"token-1", "order.info", "100000001"}, tr.calls[1].params)
}

func TestGatewayReusesSessionWithinTimeout(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	tr := &fakeTransport{}
	g := newTestGateway(t, tr, base.NoRetryPolicy(), clock)
	ctx := context.Background()

	_, err := g.Call(ctx, "storeList")
	require.NoError(t, err)
	clock.Advance(299 * time.Second)
	_, err = g.Call(ctx, "storeList")
	require.NoError(t, err)

	assert.Equal(t, 1, tr.logins)
}

func TestGatewayRenewsExpiredSession(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	tr := &fakeTransport{}
	g := newTestGateway(t, tr, base.NoRetryPolicy(), clock)
	ctx := context.Background()

	_, err := g.Call(ctx, "storeList")
	require.NoError(t, err)

	clock.Advance(301 * time.Second)
	assert.Equal(t, SessionExpired, g.State())

	_, err = g.Call(ctx, "storeList")
	require.NoError(t, err)

	assert.Equal(t, 2, tr.logins)
	assert.Equal(t, []string{"login", "storeList", "login", "storeList"}, tr.methods())
	assert.Equal(t, []any{"token-2"}, tr.calls[3].params)
}

func TestGatewayReloginsOnServerSideExpiry(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	rejected := false
	tr := &fakeTransport{}
	tr.respond = func(method string, params []any) (json.RawMessage, error) {
		if !rejected {
			rejected = true
			return nil, &Fault{Code: FaultSessionExpired, Message: "Session expired. Try to relogin."}
		}
		return json.RawMessage(`[]`), nil
	}
	g := newTestGateway(t, tr, base.NoRetryPolicy(), clock)

	_, err := g.Call(context.Background(), "storeList")
	require.NoError(t, err)

	assert.Equal(t, []string{"login", "storeList", "login", "storeList"}, tr.methods())
	assert.Equal(t, []any{"token-2"}, tr.calls[3].params)
}

func TestGatewayReloginFailureEndsCall(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	sleeper := &testutil.NoSleep{}
	tr := &revokedAccountTransport{}
	policy := base.DefaultRetryPolicy().WithFilter(AnyTransient).WithSleeper(sleeper.Sleep)
	g := newTestGateway(t, tr, policy, clock)

	var err error
	require.NotPanics(t, func() {
		_, err = g.Call(context.Background(), "storeList")
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuthentication))
	assert.Equal(t, SessionUnconnected, g.State())
	assert.Equal(t, []string{"login", "storeList", "login"}, tr.methods)
	assert.Empty(t, sleeper.Waits)
}

// revokedAccountTransport grants one session, expires it on first use and
// denies every later login
type revokedAccountTransport struct {
	methods []string
}

func (r *revokedAccountTransport) Invoke(_ context.Context, method string, _ []any) (json.RawMessage, error) {
	r.methods = append(r.methods, method)
	if method != "login" {
		return nil, &Fault{Code: FaultSessionExpired, Message: "Session expired. Try to relogin."}
	}
	if len(r.methods) == 1 {
		return json.RawMessage(`"token-1"`), nil
	}
	return nil, &Fault{Code: FaultAccessDenied, Message: "Access denied."}
}

func TestGatewayRetriesNotYetAvailable(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	sleeper := &testutil.NoSleep{}
	failures := 2
	tr := &fakeTransport{}
	tr.respond = func(method string, params []any) (json.RawMessage, error) {
		if failures > 0 {
			failures--
			return nil, &Fault{Code: 100, Message: "Requested customer not exists."}
		}
		return json.RawMessage(`{"customer_id":"7"}`), nil
	}
	policy := base.DefaultRetryPolicy().WithFilter(NotYetAvailable).WithSleeper(sleeper.Sleep)
	g := newTestGateway(t, tr, policy, clock)

	raw, err := g.Call(context.Background(), "customerCustomerInfo", "7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"customer_id":"7"}`, string(raw))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.Waits)
}

func TestGatewayExhaustedIsTransient(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	sleeper := &testutil.NoSleep{}
	tr := &fakeTransport{}
	tr.respond = func(method string, params []any) (json.RawMessage, error) {
		return nil, &Fault{Code: 100, Message: "Requested customer not exists."}
	}
	policy := base.DefaultRetryPolicy().WithFilter(NotYetAvailable).WithSleeper(sleeper.Sleep)
	g := newTestGateway(t, tr, policy, clock)

	_, err := g.Call(context.Background(), "customerCustomerInfo", "7")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTransient))
	assert.True(t, base.IsExhausted(err))
	assert.Len(t, sleeper.Waits, 2)
}

func TestGatewayFilteredFaultIsPermanent(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	sleeper := &testutil.NoSleep{}
	tr := &fakeTransport{}
	tr.respond = func(method string, params []any) (json.RawMessage, error) {
		return nil, &Fault{Code: 2, Message: "Access denied."}
	}
	policy := base.DefaultRetryPolicy().WithFilter(NotYetAvailable).WithSleeper(sleeper.Sleep)
	g := newTestGateway(t, tr, policy, clock)

	_, err := g.Call(context.Background(), "salesOrderInfo", "1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypePermanent))
	assert.Empty(t, sleeper.Waits)

	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, FaultAccessDenied, fault.Code)
}

func TestGatewayLoginFailure(t *testing.T) {
	clock := testutil.NewClock(testutil.Date(2024, 3, 1))
	tr := &loginRejectingTransport{}
	g := newTestGateway(t, tr, base.NoRetryPolicy(), clock)

	_, err := g.Call(context.Background(), "storeList")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuthentication))
	assert.Equal(t, SessionUnconnected, g.State())
}

type loginRejectingTransport struct{}

func (loginRejectingTransport) Invoke(_ context.Context, method string, _ []any) (json.RawMessage, error) {
	return nil, &Fault{Code: FaultAccessDenied, Message: "Access denied."}
}

func TestRetryFilter(t *testing.T) {
	notExists := &Fault{Message: "Product not exists."}
	denied := &Fault{Code: 2, Message: "Access denied."}
	network := errors.New(errors.ErrorTypeConnection, "connection reset")

	assert.True(t, RetryFilter("not_yet_available")(notExists))
	assert.False(t, RetryFilter("not_yet_available")(denied))
	assert.False(t, RetryFilter("not_yet_available")(network))

	assert.True(t, RetryFilter("any")(notExists))
	assert.True(t, RetryFilter("any")(denied))
	assert.True(t, RetryFilter("any")(network))
}
