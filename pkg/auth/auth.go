package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/simplybook-mcp/sbmcp/pkg/credstore"
	"github.com/simplybook-mcp/sbmcp/pkg/httpclient"
	"go.uber.org/zap"
)

// RetryPolicy applies to the primary authentication call only. The delay is
// constant, not exponential: the identity endpoint's throttling window is
// fixed.
type RetryPolicy struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// DefaultRetryPolicy matches the identity endpoint's documented behavior.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	RetryDelay:  5 * time.Second,
}

// Limiter spaces outbound authentication calls.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// Result is the structured outcome of an authentication round. It is
// returned as a value, never raised: the hosting process must not crash on
// authentication failures.
type Result struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
	Err     string `json:"error,omitempty"`
}

// TokenResponse is the identity endpoint's reply to login, second-factor
// and refresh calls.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Company      string `json:"company,omitempty"`
	Login        string `json:"login,omitempty"`
	Require2FA   bool   `json:"require2fa,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

type loginRequest struct {
	Company  string `json:"company"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type secondFactorRequest struct {
	Company   string `json:"company"`
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
	Type      string `json:"type"`
}

type refreshRequest struct {
	Company      string `json:"company"`
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	AuthToken string `json:"auth_token"`
}

// Authenticator drives the identity protocol against the SimplyBook admin
// API: primary login with retry on transient denial, the optional
// second-factor exchange, token refresh and logout.
type Authenticator struct {
	api     *httpclient.Client
	store   credstore.Store
	limiter Limiter
	policy  RetryPolicy
	log     *zap.SugaredLogger

	sleep func(ctx context.Context, d time.Duration) error
}

func New(api *httpclient.Client, store credstore.Store, limiter Limiter, logger *zap.SugaredLogger) *Authenticator {
	return &Authenticator{
		api:     api,
		store:   store,
		limiter: limiter,
		policy:  DefaultRetryPolicy,
		log:     logger,
		sleep:   sleepCtx,
	}
}

// Authenticate performs the primary login. A 403 is treated as transient
// denial: the cached credential is discarded and the call retried after the
// fixed delay, up to the attempt budget. Transport failures, HTTP error
// statuses and malformed responses follow the same retry path. An HTTP
// success without a token means bad credentials and is not retried.
func (a *Authenticator) Authenticate(ctx context.Context, company, login, password string) Result {
	for attempt := 1; attempt <= a.policy.MaxAttempts; attempt++ {
		if err := a.limiter.Acquire(ctx); err != nil {
			return Result{Success: false, Message: "authentication aborted", Err: err.Error()}
		}

		resp, err := a.api.Post(ctx, "/admin/auth", loginRequest{
			Company:  company,
			Login:    login,
			Password: password,
		})

		if err == nil && resp.StatusCode == http.StatusForbidden {
			if attempt < a.policy.MaxAttempts {
				a.log.Warnf("Got 403 on attempt %d, retrying in %s", attempt, a.policy.RetryDelay)
				if _, derr := a.store.Delete(company); derr != nil {
					a.log.Errorf("Unable to discard cached credential: %s", derr.Error())
				}
				if serr := a.sleep(ctx, a.policy.RetryDelay); serr != nil {
					return Result{Success: false, Message: "authentication aborted", Err: serr.Error()}
				}
				continue
			}
			return Result{
				Success: false,
				Message: fmt.Sprintf("HTTP 403: access denied after %d attempts", a.policy.MaxAttempts),
				Err:     "possible rate limiting or temporarily blocked credentials",
			}
		}

		var tok TokenResponse
		if err == nil && !resp.IsError() {
			err = resp.Decode(&tok)
		} else if err == nil {
			err = fmt.Errorf("login failed, status: %d", resp.StatusCode)
		}

		if err != nil {
			if attempt < a.policy.MaxAttempts {
				a.log.Warnf("Connection error on attempt %d, retrying in %s: %s", attempt, a.policy.RetryDelay, err.Error())
				if serr := a.sleep(ctx, a.policy.RetryDelay); serr != nil {
					return Result{Success: false, Message: "authentication aborted", Err: serr.Error()}
				}
				continue
			}
			return Result{Success: false, Message: "connection error", Err: err.Error()}
		}

		if tok.Token == "" {
			reason := tok.Error
			if reason == "" {
				reason = "no token received in the response"
			}
			return Result{Success: false, Message: "authentication failed", Err: reason}
		}

		if err := a.store.Save(company, tok.Token); err != nil {
			return Result{Success: false, Message: "unable to store credential", Err: err.Error()}
		}

		a.log.Infof("Authenticated company %s", company)
		return Result{Success: true, Token: tok.Token, Message: "authentication successful"}
	}

	// Unreachable with MaxAttempts >= 1.
	return Result{Success: false, Message: "authentication failed", Err: "no attempts were made"}
}

// AuthenticateSecondFactor exchanges a 2FA code for a token. Single
// attempt, no retry; errors surface directly. The returned token is not
// persisted, the caller owns the session it belongs to.
func (a *Authenticator) AuthenticateSecondFactor(ctx context.Context, company, sessionID, code, typ string) (*TokenResponse, error) {
	if err := a.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	resp, err := a.api.Post(ctx, "/admin/auth/2fa", secondFactorRequest{
		Company:   company,
		SessionID: sessionID,
		Code:      code,
		Type:      typ,
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("second factor exchange failed, status: %d", resp.StatusCode)
	}

	var tok TokenResponse
	if err := resp.Decode(&tok); err != nil {
		return nil, fmt.Errorf("unable to decode second factor response: %w", err)
	}
	return &tok, nil
}

// RequestSMSCode triggers out-of-band delivery of the SMS second-factor
// code for the given login session.
func (a *Authenticator) RequestSMSCode(ctx context.Context, company, sessionID string) error {
	if err := a.limiter.Acquire(ctx); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("company", company)
	params.Set("session_id", sessionID)

	resp, err := a.api.Get(ctx, "/admin/auth/sms", params)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("sms code request failed, status: %d", resp.StatusCode)
	}
	return nil
}

// RefreshToken renews the token. On success the new token is persisted
// exactly as a primary login would persist it.
func (a *Authenticator) RefreshToken(ctx context.Context, company, refreshToken string) (*TokenResponse, error) {
	if err := a.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	resp, err := a.api.Post(ctx, "/admin/auth/refresh-token", refreshRequest{
		Company:      company,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("token refresh failed, status: %d", resp.StatusCode)
	}

	var tok TokenResponse
	if err := resp.Decode(&tok); err != nil {
		return nil, fmt.Errorf("unable to decode refresh response: %w", err)
	}

	if tok.Token != "" {
		if err := a.store.Save(company, tok.Token); err != nil {
			return nil, err
		}
	}
	return &tok, nil
}

// Logout revokes the token remotely and then deletes the local credential.
// If the remote call fails the local credential is left intact: revocation
// did not provably succeed.
func (a *Authenticator) Logout(ctx context.Context, company, token string) error {
	if err := a.limiter.Acquire(ctx); err != nil {
		return err
	}

	api := a.api.WithHeaders(map[string]string{
		"X-Company-Login": company,
		"X-Token":         token,
	})

	resp, err := api.Post(ctx, "/admin/auth/logout", logoutRequest{AuthToken: token})
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("logout failed, status: %d", resp.StatusCode)
	}

	if _, err := a.store.Delete(company); err != nil {
		return err
	}

	a.log.Infof("Logged out company %s", company)
	return nil
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
