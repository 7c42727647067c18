package gupshup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Sender posts outbound WhatsApp messages on behalf of one source number.
type Sender struct {
	source     string
	sourceName string
	apiKey     string
	transport  transport
}

// NewSender builds a Sender for the given source number and app API key.
func NewSender(source, apiKey string, opts ...Option) (*Sender, error) {
	source = strings.TrimSpace(source)
	apiKey = strings.TrimSpace(apiKey)
	if source == "" {
		return nil, errors.New("gupshup sender: source is required")
	}
	if apiKey == "" {
		return nil, errors.New("gupshup sender: api key is required")
	}

	s := defaultSettings(DefaultMessageURL)
	s.apply(opts)

	return &Sender{
		source:     source,
		sourceName: s.sourceName,
		apiKey:     apiKey,
		transport:  transport{baseURL: s.baseURL, client: s.httpClient, logger: s.logger},
	}, nil
}

// Source returns the configured source number.
func (s *Sender) Source() string { return s.source }

// SendMessage delivers msg to destination and returns the provider message id.
// Every failure matches ErrSendFailed.
func (s *Sender) SendMessage(ctx context.Context, destination string, msg Message) (string, error) {
	if msg == nil {
		return "", sendFailed(destination, errors.New("message is required"))
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", sendFailed(destination, err)
	}

	form := url.Values{}
	form.Set("channel", "whatsapp")
	form.Set("source", s.source)
	form.Set("destination", destination)
	form.Set("message", string(payload))
	if s.sourceName != "" {
		form.Set("src.name", s.sourceName)
	}

	header := http.Header{}
	header.Set("apiKey", s.apiKey)

	body, err := s.transport.do(ctx, request{method: http.MethodPost, form: form, header: header})
	if err != nil {
		return "", sendFailed(destination, err)
	}

	var messageID string
	if err := unwrap(body, "messageId", &messageID); err != nil {
		return "", sendFailed(destination, err)
	}
	if messageID == "" {
		return "", sendFailed(destination, errors.New("response has no messageId"))
	}
	return messageID, nil
}
