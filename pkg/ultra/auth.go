package ultra

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const tokenPath = "/v2/authorization/token"

// Login exchanges username and password for a bearer token and installs it
// on the client. The token is never refreshed.
func (c *Client) Login(ctx context.Context, username, password string) error {
	c.logger.Debug("login", "username", username)

	tokenURL := c.baseURL + tokenPath
	cfg := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: c.timeout, Transport: c.base})
	tok, err := cfg.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if !errors.As(err, &retrieveErr) || retrieveErr.Response == nil {
			return fmt.Errorf("failed to obtain access token: %w", err)
		}
		resp := retrieveErr.Response
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		c.logger.Error("request failed",
			"method", http.MethodPost,
			"url", tokenURL,
			"status", resp.StatusCode,
			"reason", http.StatusText(resp.StatusCode),
			"body", string(retrieveErr.Body),
		)
		return &HTTPError{
			Method:     http.MethodPost,
			URL:        tokenURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(retrieveErr.Body),
		}
	}

	c.http = &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(tok),
			Base:   c.base,
		},
	}
	return nil
}
