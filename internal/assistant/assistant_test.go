package assistant

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"fintrack/internal/insights"
)

func TestReplyWithoutKey(t *testing.T) {
	c, err := New(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Configured() {
		t.Fatal("client without key must not be configured")
	}
	if c.model != DefaultModel {
		t.Fatalf("model = %q", c.model)
	}
	if _, err := c.Reply(context.Background(), nil, "hi"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestToContentsMapsRoles(t *testing.T) {
	got := toContents([]insights.Turn{
		{Role: insights.RoleUser, Content: "snapshot"},
		{Role: insights.RoleAssistant, Content: "hello"},
	})
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Role != "user" || got[1].Role != "model" {
		t.Fatalf("roles = %q, %q", got[0].Role, got[1].Role)
	}
	if got[1].Parts[0].Text != "hello" {
		t.Fatalf("text = %q", got[1].Parts[0].Text)
	}
}

func TestReplyText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Spend "}, {Text: "less."}}},
		}},
	}
	got, err := replyText(resp)
	if err != nil || got != "Spend less." {
		t.Fatalf("replyText = %q, %v", got, err)
	}

	for _, empty := range []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
	} {
		if _, err := replyText(empty); !errors.Is(err, ErrEmptyReply) {
			t.Errorf("expected ErrEmptyReply, got %v", err)
		}
	}
}
