// Command get_token runs the one-time OAuth consent flow and prints the
// refresh token to put in GMAIL_REFRESH_TOKEN.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"flight-tracker-service/internal/infrastructure/oauth"
	"flight-tracker-service/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	log := logger.NewLogger()
	godotenv.Load()

	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Fatal("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
	}

	redirectURL := os.Getenv("GMAIL_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = "http://localhost:8090/oauth2callback"
	}
	callback, err := url.Parse(redirectURL)
	if err != nil {
		log.Fatal("Invalid GMAIL_REDIRECT_URL", "error", err)
	}

	gmailOAuth := oauth.NewGmailOAuth(clientID, clientSecret, redirectURL, "", log)

	state, err := oauth.NewState()
	if err != nil {
		log.Fatal("Failed to create state", "error", err)
	}

	done := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc(callback.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nRefresh Token: %s\n\n", token.RefreshToken)
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		close(done)
	})

	server := &http.Server{Addr: callback.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Callback server failed", "error", err)
		}
	}()

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.AuthURL(state))

	<-done
	server.Shutdown(context.Background())
}
