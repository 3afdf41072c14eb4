package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_storefront/internal/domain"
)

func (c *Client) CreateConversation(ctx context.Context, subject string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := c.do(ctx, http.MethodPost, "/api/v1/conversations",
		domain.CreateConversationRequest{Subject: subject}, &conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *Client) PostMessage(ctx context.Context, conversationID, body string) (*domain.Message, error) {
	var msg domain.Message
	err := c.do(ctx, http.MethodPost, "/api/v1/conversations/"+conversationID+"/messages",
		domain.PostMessageRequest{Body: body}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the conversation's messages, optionally only
// those after the given message ID.
func (c *Client) ListMessages(ctx context.Context, conversationID, afterID string) ([]domain.Message, error) {
	path := "/api/v1/conversations/" + conversationID + "/messages"
	if afterID != "" {
		path += "?after=" + url.QueryEscape(afterID)
	}

	var msgs []domain.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) UpdateConversationStatus(ctx context.Context, conversationID string, status domain.ConversationStatus) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := c.do(ctx, http.MethodPut, "/api/v1/conversations/"+conversationID+"/status",
		domain.UpdateConversationStatusRequest{Status: status}, &conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}
