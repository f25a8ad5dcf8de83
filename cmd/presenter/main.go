package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rollcall/core/internal/rotation"
	"go.uber.org/zap"
)

// httpIssuer mints sessions through the server API with an admin token.
type httpIssuer struct {
	baseURL   string
	authToken string
	client    *http.Client
}

func (i *httpIssuer) Issue(ctx context.Context) (string, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/api/v1/sessions", nil)
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Authorization", "Bearer "+i.authToken)

	resp, err := i.client.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", time.Time{}, fmt.Errorf("issue session: %s: %s",
			resp.Status, strings.TrimSpace(string(body)))
	}

	var out struct {
		Session struct {
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"session"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", time.Time{}, err
	}
	if out.Session.Token == "" {
		return "", time.Time{}, errors.New("server returned an empty token")
	}
	return out.Session.Token, out.Session.ExpiresAt, nil
}

func main() {
	serverURL := flag.String("server", "http://127.0.0.1:2333", "Base URL of the attendance server")
	authToken := flag.String("token", "", "Admin bearer token")
	interval := flag.Duration("interval", 180*time.Second, "Rotation interval")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if strings.TrimSpace(*authToken) == "" {
		logger.Fatal("--token is required")
	}

	issuer := &httpIssuer{
		baseURL:   strings.TrimRight(*serverURL, "/"),
		authToken: *authToken,
		client:    &http.Client{Timeout: 15 * time.Second},
	}

	client := rotation.New(issuer, *interval, rotation.Callbacks{
		OnToken: func(token string, expiresAt time.Time) {
			// The display encodes this token into the QR code attendees scan.
			fmt.Printf("\ncheck-in token: %s (valid until %s)\n",
				token, expiresAt.Format(time.TimeOnly))
		},
		OnCountdown: func(remaining time.Duration) {
			fmt.Printf("\rnext rotation in %3ds", int(remaining.Seconds()))
		},
		OnError: func(err error) {
			logger.Warn("rotation failed, keeping previous token", zap.Error(err))
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	logger.Info("presenter starting",
		zap.String("server", issuer.baseURL),
		zap.Duration("interval", *interval))
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("presenter stopped", zap.Error(err))
	}
	fmt.Println()
	logger.Info("presenter exited")
}
