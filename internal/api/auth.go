package api

import (
	"context"
	"net/http"

	"learnpool-client/internal/model"
)

type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	UserID      uint       `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Role        model.Role `json:"role"`
}

// Login authenticates and persists the returned credentials through the
// injected app state.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := sendJSON[TokenResponse](ctx, c, http.MethodPost, "/auth/login", body)
	if err != nil {
		return TokenResponse{}, err
	}
	if err := c.app.SetSession(resp.AccessToken, resp.UserID, resp.DisplayName, resp.Role); err != nil {
		return TokenResponse{}, err
	}
	return resp, nil
}

// Logout clears stored credentials locally; there is no server call.
func (c *Client) Logout() error {
	return c.app.Clear()
}
