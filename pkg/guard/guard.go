package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simplybook-mcp/sbmcp/pkg/auth"
	"github.com/simplybook-mcp/sbmcp/pkg/credstore"
	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SettleDelay gives the remote side a moment to propagate a freshly issued
// token before the first business call uses it.
const SettleDelay = time.Second

// ErrCredentialMissing means headers were requested without a prior
// successful EnsureAuthenticated. That is a call-order bug in the caller,
// not a runtime condition the guard recovers from.
var ErrCredentialMissing = errors.New("no cached credential")

// Guard is the single entry point resource clients use to obtain valid
// request headers, hiding the retry and backoff mechanics underneath.
type Guard struct {
	store credstore.Store
	auth  *auth.Authenticator
	log   *zap.SugaredLogger

	group singleflight.Group
	sleep func(ctx context.Context, d time.Duration) error
}

func New(store credstore.Store, authenticator *auth.Authenticator, logger *zap.SugaredLogger) *Guard {
	return &Guard{
		store: store,
		auth:  authenticator,
		log:   logger,
		sleep: sleepCtx,
	}
}

// EnsureAuthenticated makes sure a usable token is cached for the company,
// authenticating if necessary. A cache hit returns immediately with no
// network call. Concurrent calls for the same company share a single
// authentication round trip.
func (g *Guard) EnsureAuthenticated(ctx context.Context, company, login, password string) bool {
	return g.Ensure(ctx, company, login, password).Success
}

// Ensure is EnsureAuthenticated with the full authentication result, for
// callers that surface failure details to an operator.
func (g *Guard) Ensure(ctx context.Context, company, login, password string) auth.Result {
	if _, ok, err := g.store.Load(company); err != nil {
		g.log.Errorf("Unable to read cached credential for company %s: %s", company, err.Error())
	} else if ok {
		return auth.Result{Success: true, Message: "cached token is valid"}
	}

	v, _, _ := g.group.Do(company, func() (interface{}, error) {
		// Another flight may have refreshed the slot while we waited.
		if _, ok, err := g.store.Load(company); err == nil && ok {
			return auth.Result{Success: true, Message: "cached token is valid"}, nil
		}

		res := g.auth.Authenticate(ctx, company, login, password)
		if !res.Success {
			g.log.Errorf("Authentication failed for company %s: %s: %s", company, res.Message, res.Err)
			return res, nil
		}

		// Let the remote side settle before the very first business call.
		if err := g.sleep(ctx, SettleDelay); err != nil {
			g.log.Debugf("Settle delay interrupted: %s", err.Error())
		}
		return res, nil
	})

	return v.(auth.Result)
}

// AuthHeaders returns the validated outbound headers for the company.
// Callers must have called EnsureAuthenticated first.
func (g *Guard) AuthHeaders(company string) (map[string]string, error) {
	token, ok, err := g.store.Load(company)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w for company %q, call EnsureAuthenticated first", ErrCredentialMissing, company)
	}

	return map[string]string{
		"X-Company-Login": company,
		"X-Token":         token,
		"Content-Type":    "application/json",
		"User-Agent":      util.UserAgent,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
