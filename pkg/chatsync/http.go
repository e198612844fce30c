package chatsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"GlowCare/models"
)

// HTTPSource speaks the message resource of a running backend and
// implements Source for clients outside the process (tools, smoke
// tests against a live server). Authentication is the caller's bearer
// token; the server derives sender identity from it.
type HTTPSource struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPSource(baseURL, token string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type messagePayload struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderRole     string    `json:"sender_role"`
	SenderID       uint      `json:"sender_id"`
	Text           string    `json:"text"`
	Kind           string    `json:"kind"`
	IsRead         bool      `json:"is_read"`
	SentAt         time.Time `json:"sent_at"`
}

func (mp messagePayload) toModel() models.Message {
	return models.Message{
		Model:          gorm.Model{ID: mp.ID},
		ConversationID: mp.ConversationID,
		SenderRole:     mp.SenderRole,
		SenderID:       mp.SenderID,
		Text:           mp.Text,
		Kind:           mp.Kind,
		IsRead:         mp.IsRead,
		SentAt:         mp.SentAt,
	}
}

func (h *HTTPSource) FetchSince(ctx context.Context, conversationID, afterID uint) ([]models.Message, error) {
	q := url.Values{}
	q.Set("conversation_id", strconv.FormatUint(uint64(conversationID), 10))
	q.Set("last_message_id", strconv.FormatUint(uint64(afterID), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/messages?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var payload []messagePayload
	if err := h.do(req, &payload); err != nil {
		return nil, err
	}
	msgs := make([]models.Message, 0, len(payload))
	for _, mp := range payload {
		msgs = append(msgs, mp.toModel())
	}
	return msgs, nil
}

func (h *HTTPSource) MarkRead(ctx context.Context, conversationID uint, readerRole string) error {
	body, _ := json.Marshal(map[string]any{"conversation_id": conversationID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.BaseURL+"/messages/read", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, nil)
}

// SendMessage appends a message and returns the stored row for local
// echo (Poller.Append). clientKey may be empty; pass a fresh UUID to
// make retries after a dropped response idempotent.
func (h *HTTPSource) SendMessage(ctx context.Context, conversationID uint, text, kind, clientKey string) (models.Message, error) {
	body, _ := json.Marshal(map[string]any{
		"conversation_id": conversationID,
		"text":            text,
		"kind":            kind,
		"client_key":      clientKey,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return models.Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var payload messagePayload
	if err := h.do(req, &payload); err != nil {
		return models.Message{}, err
	}
	return payload.toModel(), nil
}

func (h *HTTPSource) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+h.Token)
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
