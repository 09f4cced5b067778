package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const resetMailSubject = "Reset hasła - Notatnik treningowy"

// LogMailer only logs the reset token, used when no mail relay is configured.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, email, resetToken string) error {
	log.Infof("password reset requested for [%s], token: %s", email, resetToken)
	return nil
}

type resetMail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// WebhookMailer posts reset mails as JSON to a mail relay.
type WebhookMailer struct {
	webhookURL    string
	token         string
	resetLinkBase string
	httpClient    *http.Client
}

func NewWebhookMailer(webhookURL, token, resetLinkBase string) *WebhookMailer {
	return &WebhookMailer{
		webhookURL:    webhookURL,
		token:         token,
		resetLinkBase: resetLinkBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ResetLink is the link the user follows to set a new password.
func (m *WebhookMailer) ResetLink(resetToken string) string {
	return m.resetLinkBase + "?token=" + url.QueryEscape(resetToken)
}

func (m *WebhookMailer) SendPasswordReset(ctx context.Context, email, resetToken string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "mailer.sendPasswordReset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	mailJson, err := json.Marshal(resetMail{
		To:      email,
		Subject: resetMailSubject,
		Text: "Aby ustawić nowe hasło, otwórz link:\n" + m.ResetLink(resetToken) +
			"\n\nJeśli to nie Ty prosiłeś o reset, zignoruj tę wiadomość.",
	})
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.webhookURL, bytes.NewReader(mailJson))
	if err != nil {
		return fmt.Errorf("new mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail relay responded with status %d", resp.StatusCode)
	}
	return nil
}
