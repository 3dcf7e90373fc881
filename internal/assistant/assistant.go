// Package assistant generates chat replies with Gemini.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"fintrack/internal/insights"
)

const DefaultModel = "gemini-2.5-flash"

var (
	ErrNotConfigured = errors.New("assistant not configured (GEMINI_API_KEY missing)")
	ErrEmptyReply    = errors.New("assistant returned no text")
)

// Gemini roles.
const (
	roleUser  = "user"
	roleModel = "model"
)

type Client struct {
	client *genai.Client
	model  string
}

// New connects to the Gemini API. An empty apiKey yields a client whose
// Reply always fails with ErrNotConfigured, so the rest of the API can run
// without a key.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	if apiKey == "" {
		return &Client{model: model}, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: c, model: model}, nil
}

// Configured reports whether replies can be generated.
func (c *Client) Configured() bool {
	return c != nil && c.client != nil
}

// Reply starts a chat seeded with conversation and sends message. There is
// no retry: a failed call is returned to the caller as is.
func (c *Client) Reply(ctx context.Context, conversation []insights.Turn, message string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	chat, err := c.client.Chats.Create(ctx, c.model, nil, toContents(conversation))
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return replyText(resp)
}

func toContents(turns []insights.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := roleUser
		if t.Role == insights.RoleAssistant {
			role = roleModel
		}
		out = append(out, &genai.Content{Role: role, Parts: []*genai.Part{{Text: t.Content}}})
	}
	return out
}

// replyText joins the text parts of the first candidate.
func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyReply
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyReply
	}
	return b.String(), nil
}
