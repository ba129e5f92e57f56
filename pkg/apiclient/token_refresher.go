package apiclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

const (
	maxRetries = 3
	baseDelay  = time.Second
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// tokenRefresher logs in with stored credentials. Transport and 5xx
// failures are retried with a linear delay; rejected credentials are not.
type tokenRefresher struct {
	client   *Client
	email    string
	password string

	mu    sync.Mutex
	token string
	delay time.Duration
}

func (r *tokenRefresher) CurrentToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

func (r *tokenRefresher) RefreshToken(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.refreshTokenLocked(ctx)
}

func (r *tokenRefresher) refreshTokenLocked(ctx context.Context) (string, error) {
	delay := r.delay
	if delay <= 0 {
		delay = baseDelay
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * delay):
			}
		}

		resp, err := r.client.send(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{Email: r.email, Password: r.password}, "")
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}
		var out loginResponse
		_, err = decode(resp, &out)
		_ = resp.Body.Close()
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
				return "", err
			}
			lastErr = err
			continue
		}
		if out.Token == "" {
			lastErr = errors.New("apiclient: login returned an empty token")
			continue
		}

		r.token = out.Token
		return out.Token, nil
	}

	return "", lastErr
}
