package clients

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/creatorlens/creatorlens/config"
)

// TokenManager exchanges the long-lived refresh token for a bearer token.
// Stateless: every Acquire performs a fresh refresh grant against the
// token endpoint, so a 401 retry always sees a brand-new token.
type TokenManager struct {
	creds    config.RedditCredentials
	TokenURL string
	Client   *http.Client
}

func NewTokenManager(creds config.RedditCredentials) *TokenManager {
	return &TokenManager{
		creds:    creds,
		TokenURL: REDDIT_AUTH_URL,
		Client: &http.Client{
			Timeout:   REQUEST_TIMEOUT,
			Transport: &userAgentTransport{agent: creds.UserAgent},
		},
	}
}

func (tm *TokenManager) Acquire(ctx context.Context) (string, error) {
	if err := tm.validate(); err != nil {
		return "", err
	}

	conf := &oauth2.Config{
		ClientID:     tm.creds.ClientID,
		ClientSecret: tm.creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tm.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, tm.Client)
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: tm.creds.RefreshToken})

	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenAcquisition, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: response carried no access token", ErrTokenAcquisition)
	}
	return token.AccessToken, nil
}

func (tm *TokenManager) validate() error {
	var missing []string
	if tm.creds.ClientID == "" {
		missing = append(missing, "client id")
	}
	if tm.creds.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if tm.creds.RefreshToken == "" {
		missing = append(missing, "refresh token")
	}
	if tm.creds.UserAgent == "" {
		missing = append(missing, "user agent")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// userAgentTransport stamps the configured user agent on every request,
// including the token grant itself.
type userAgentTransport struct {
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return http.DefaultTransport.RoundTrip(clone)
}
