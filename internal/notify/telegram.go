package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultTelegramAPI is the Bot API base url.
	DefaultTelegramAPI = "https://api.telegram.org"
	// DefaultParseMode is Telegram legacy Markdown.
	DefaultParseMode = "Markdown"

	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
	redactedToken    = "<redacted>"
)

var jsonit = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingCredentials is returned by Deliver when the bot token or chat id is empty.
var ErrMissingCredentials = errors.New("telegram bot token or chat id not configured")

// DeliveryError reports a rejected or failed sendMessage call.
type DeliveryError struct {
	StatusCode  int
	Description string
	Err         error
}

func (e *DeliveryError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("telegram delivery failed: %v", e.Err)
	case e.Description != "":
		return fmt.Sprintf("telegram delivery failed: status %d: %s", e.StatusCode, e.Description)
	default:
		return fmt.Sprintf("telegram delivery failed: status %d", e.StatusCode)
	}
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// TelegramConfig configures a TelegramSink.
type TelegramConfig struct {
	APIBase   string
	Token     string
	ChatID    string
	ParseMode string
	Timeout   time.Duration
}

// TelegramSink posts reports to one chat through the Bot API.
type TelegramSink struct {
	cfg    TelegramConfig
	hc     *http.Client
	logger *zap.Logger
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// NewTelegramSink builds a sink. Credentials are checked on Deliver, not here.
func NewTelegramSink(cfg TelegramConfig, logger *zap.Logger) *TelegramSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultTelegramAPI
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")

	return &TelegramSink{
		cfg:    cfg,
		hc:     &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Deliver sends text as a single message. There is no retry.
func (s *TelegramSink) Deliver(ctx context.Context, text string) error {
	if s.cfg.Token == "" || s.cfg.ChatID == "" {
		return ErrMissingCredentials
	}

	body, err := jsonit.Marshal(sendMessageRequest{
		ChatID:    s.cfg.ChatID,
		Text:      text,
		ParseMode: s.cfg.ParseMode,
	})
	if err != nil {
		return fmt.Errorf("encode sendMessage: %w", err)
	}

	endpoint := s.cfg.APIBase + "/bot" + s.cfg.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: s.redact(pkgerrors.Wrap(err, "failed to create HTTP request"))}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return &DeliveryError{Err: s.redact(pkgerrors.Wrap(err, "HTTP request failed"))}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &DeliveryError{StatusCode: resp.StatusCode, Err: pkgerrors.Wrap(err, "failed to read response body")}
	}

	var result apiResponse
	decodeErr := jsonit.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{StatusCode: resp.StatusCode, Description: result.Description}
	}
	if decodeErr != nil {
		return &DeliveryError{StatusCode: resp.StatusCode, Err: pkgerrors.Wrap(decodeErr, "failed to decode response")}
	}
	if !result.OK {
		return &DeliveryError{StatusCode: resp.StatusCode, Description: result.Description}
	}

	s.logger.Debug("telegram message sent", zap.String("chat_id", s.cfg.ChatID), zap.Int("chars", len(text)))
	return nil
}

// redact replaces the bot token in errors that carry the request url.
func (s *TelegramSink) redact(err error) error {
	if err == nil || s.cfg.Token == "" {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, s.cfg.Token, redactedToken)
	}
	if strings.Contains(err.Error(), s.cfg.Token) {
		return errors.New(strings.ReplaceAll(err.Error(), s.cfg.Token, redactedToken))
	}
	return err
}
