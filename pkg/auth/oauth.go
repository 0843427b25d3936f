// Package auth obtains a Todoist API token, either from a cached token file
// or by running the OAuth2 authorization-code flow with a localhost callback.
// A static API key configured in the rc file bypasses all of this.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	"github.com/harrisonrobin/titwsync/pkg/config"
	"github.com/harrisonrobin/titwsync/pkg/log"
)

const (
	// CredentialsFile holds the OAuth app's client_id and client_secret,
	// created on the Todoist app console.
	CredentialsFile = "credentials.json"

	// TokenFile caches the obtained token. Todoist tokens do not expire,
	// so no refresh handling is needed.
	TokenFile = "token.json"

	// LocalhostAuthPort is the port the local web server listens on to
	// capture the OAuth redirect. Must match the app's redirect URI.
	LocalhostAuthPort = "6789"

	scope = "data:read_write"
)

var todoistEndpoint = oauth2.Endpoint{
	AuthURL:  "https://todoist.com/oauth/authorize",
	TokenURL: "https://todoist.com/oauth/access_token",
}

type credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// GetConfig builds the oauth2.Config from the credentials file in the
// titwsync config directory.
func GetConfig() (*oauth2.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	credFile := filepath.Join(dir, CredentialsFile)
	b, err := os.ReadFile(credFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s: %w", credFile, err)
	}

	var creds credentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return nil, fmt.Errorf("unable to parse credentials file %s: %w", credFile, err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("credentials file %s is missing client_id or client_secret", credFile)
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     todoistEndpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort),
		Scopes:       []string{scope},
	}, nil
}

// TokenPath returns the location of the cached token file.
func TokenPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TokenFile), nil
}

// Token returns an access token for the Todoist API. cfg's static API key
// wins; otherwise the cached token is used, and as a last resort the full
// web authorization flow runs.
func Token(ctx context.Context, cfg *config.Config) (string, error) {
	if key := cfg.APIKey(); key != "" {
		return key, nil
	}

	tokenFile, err := TokenPath()
	if err != nil {
		return "", err
	}

	if tok, err := tokenFromFile(tokenFile); err == nil {
		return tok.AccessToken, nil
	}

	log.Info("No existing token found at %s. Initiating web authorization flow...", tokenFile)
	tok, err := Authorize(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Authorize runs the OAuth2 authorization-code flow and caches the result,
// replacing any existing token file.
func Authorize(ctx context.Context) (*oauth2.Token, error) {
	oauthCfg, err := GetConfig()
	if err != nil {
		return nil, err
	}

	tok, err := getTokenFromWeb(ctx, oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get token from web: %w", err)
	}

	tokenFile, err := TokenPath()
	if err != nil {
		return nil, err
	}
	if err := saveToken(tokenFile, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// getTokenFromWeb starts a local web server to capture the OAuth redirect,
// prints the authorization URL for the user to open, and exchanges the
// returned code for a token.
func getTokenFromWeb(ctx context.Context, oauthCfg *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string)
	errCh := make(chan error)

	listener, err := net.Listen("tcp", ":"+LocalhostAuthPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	authURL := oauthCfg.AuthCodeURL("state-token")
	fmt.Printf("Please open the following URL in your browser to authorize titwsync:\n%s\n", authURL)
	log.Info("Waiting for authorization code...")

	select {
	case authCode := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := oauthCfg.Exchange(exchangeCtx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Todoist: %w", err)
		}
		server.Shutdown(exchangeCtx)
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		server.Shutdown(context.Background())
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		server.Shutdown(context.Background())
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken saves an oauth2.Token to a JSON file readable only by the owner.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to encode token: %w", err)
	}
	log.Info("Saved authentication token to %s", path)
	return nil
}
