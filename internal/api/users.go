package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/inbox-dashboard/internal/model"
)

// GetUser fetches the dashboard user by id.
func (c *Client) GetUser(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, errors.New("user id is required")
	}

	var u model.User
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), nil, &u); err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return u, nil
}

// HistoryParams pages through a conversation.
type HistoryParams struct {
	UserID string
	Limit  int // 0 = backend default (50)
	Offset int
}

// GetConversationMessages fetches stored messages of one conversation.
func (c *Client) GetConversationMessages(ctx context.Context, conversationID string, params HistoryParams) ([]model.Message, error) {
	if conversationID == "" {
		return nil, errors.New("conversation id is required")
	}

	query := url.Values{}
	if params.UserID != "" {
		query.Set("user_id", params.UserID)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	var msgs []model.Message
	path := "/messages/conversation/" + url.PathEscape(conversationID)
	if err := c.get(ctx, path, query, &msgs); err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", conversationID, err)
	}
	return msgs, nil
}
