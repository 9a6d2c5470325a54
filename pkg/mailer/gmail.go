// Package mailer sends roster documents through the Gmail API using an
// offline OAuth refresh token.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/gracechapel/roster-engine/pkg/config"
	"github.com/gracechapel/roster-engine/pkg/retry"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// Sends are spaced out to respect Gmail API rate limits.
const sendInterval = 3 * time.Second

// GmailClient wraps the Gmail API for attachment delivery.
type GmailClient struct {
	service      *gmail.Service
	sender       string
	logger       *zap.Logger
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

var _ services.Mailer = (*GmailClient)(nil)

// NewGmailClient creates a Gmail client from an offline refresh token. The
// token must carry the gmail.send scope.
func NewGmailClient(ctx context.Context, cfg *config.MailConfig, logger *zap.Logger) (*GmailClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("mail configuration is incomplete")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailClient{
		service: service,
		sender:  cfg.Sender,
		logger:  logger,
	}, nil
}

// SendWithAttachment sends a plain-text email carrying one attachment.
// Throttles requests to respect Gmail API rate limits.
func (c *GmailClient) SendWithAttachment(ctx context.Context, to, subject, body, filename string, attachment []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if elapsed := time.Since(c.lastSendTime); elapsed < sendInterval {
			select {
			case <-time.After(sendInterval - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	raw, err := buildMIMEMessage(c.sender, to, subject, body, filename, attachment)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	err = retry.Do(ctx, nil, func() error {
		_, sendErr := c.service.Users.Messages.Send("me", message).Context(ctx).Do()
		return sendErr
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	c.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("attachment", filename))
	return nil
}

// buildMIMEMessage assembles a multipart/mixed message with a text part and
// one base64-encoded PDF attachment.
func buildMIMEMessage(from, to, subject, body, filename string, attachment []byte) ([]byte, error) {
	var msg strings.Builder
	content := &strings.Builder{}
	writer := multipart.NewWriter(content)

	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary()))

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	attachmentHeader := textproto.MIMEHeader{}
	attachmentHeader.Set("Content-Type", "application/pdf")
	attachmentHeader.Set("Content-Transfer-Encoding", "base64")
	attachmentHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attachmentPart, err := writer.CreatePart(attachmentHeader)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(attachment)
	// RFC 2045 line length limit for the base64 body.
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := attachmentPart.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[n:]
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	msg.WriteString(content.String())
	return []byte(msg.String()), nil
}
