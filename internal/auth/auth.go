// Package auth acquires and stores the user's Google OAuth token. The
// interactive browser dance is a private detail of SignIn; the rest of
// the application only ever sees a token source or ErrNotAuthenticated.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rrens/knowledge-drive/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
)

const (
	revokeURL   = "https://oauth2.googleapis.com/revoke"
	userinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

	signInTimeout = 3 * time.Minute
)

// Profile holds the signed-in user's basic identity.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Session owns the OAuth configuration and the on-disk token.
type Session struct {
	cfg       *oauth2.Config
	tokenFile string
}

// NewSession creates a session for the given OAuth client. The token
// file holds the refreshable token between runs.
func NewSession(clientID, clientSecret, tokenFile string) *Session {
	return &Session{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{drivev3.DriveFileScope},
		},
		tokenFile: tokenFile,
	}
}

// SignIn runs the interactive three-legged flow: it listens on a
// loopback port, prints the consent URL for the user to open, waits for
// the redirect, exchanges the code, and persists the token.
func (s *Session) SignIn(ctx context.Context) error {
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		return fmt.Errorf("google oauth client is not configured")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to open loopback listener: %w", err)
	}
	defer listener.Close()

	cfg := *s.cfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	state := uuid.NewString()
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Fprintf(os.Stderr, "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: errors.New("oauth state mismatch")}
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "sign-in denied", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("oauth error: %s", errCode)}
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this tab.")
		results <- result{code: q.Get("code")}
	})}
	go srv.Serve(listener)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(ctx, signInTimeout)
	defer cancel()

	var res result
	select {
	case res = <-results:
	case <-ctx.Done():
		return fmt.Errorf("sign-in timed out: %w", ctx.Err())
	}
	if res.err != nil {
		return res.err
	}

	token, err := cfg.Exchange(ctx, res.code)
	if err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}

	if err := s.saveToken(token); err != nil {
		return err
	}
	log.Info().Msg("signed in")
	return nil
}

// SignOut revokes the stored token with the provider and removes it
// from disk. A revocation failure still removes the local token.
func (s *Session) SignOut(ctx context.Context) error {
	token, err := s.loadToken()
	if err != nil {
		return err
	}

	form := url.Values{"token": {token.AccessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err == nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if resp, rerr := http.DefaultClient.Do(req); rerr != nil {
			log.Warn().Err(rerr).Msg("token revocation failed")
		} else {
			resp.Body.Close()
		}
	}

	if err := os.Remove(s.tokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	log.Info().Msg("signed out")
	return nil
}

// TokenSource returns a refreshing token source backed by the stored
// token, or ErrNotAuthenticated when no token is on disk.
func (s *Session) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := s.loadToken()
	if err != nil {
		return nil, err
	}
	return s.cfg.TokenSource(ctx, token), nil
}

// Profile fetches the signed-in user's name, email and picture.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	ts, err := s.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	return &profile, nil
}

func (s *Session) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *Session) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return &token, nil
}
