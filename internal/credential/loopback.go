package credential

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// CallbackTimeout bounds how long the loopback flow waits for the
	// browser.
	CallbackTimeout = 5 * time.Minute

	// ExchangeTimeout bounds the code-for-token exchange.
	ExchangeTimeout = 30 * time.Second

	callbackStartPort   = 8085
	callbackMaxAttempts = 5
)

// Loopback runs the authorization-code flow with PKCE against a local
// callback server. openURL is handed the URL the user must visit.
func Loopback(ctx context.Context, config *oauth2.Config, openURL func(string)) (*oauth2.Token, error) {
	port, listener, err := listenCallback()
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	cfg := *config
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	openURL(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			sendErr(errCh, errors.New("oauth state mismatch"))
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			sendErr(errCh, errors.New("no code in callback"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			sendErr(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(CallbackTimeout):
		return nil, errors.New("oauth callback timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, ExchangeTimeout)
	defer cancel()
	tok, err := cfg.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return tok, nil
}

func sendErr(ch chan error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// listenCallback binds the first free port from callbackStartPort.
func listenCallback() (int, net.Listener, error) {
	for i := 0; i < callbackMaxAttempts; i++ {
		port := callbackStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, errors.New("could not bind to a local port for the oauth callback")
}
