package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// QuickConnectInitiate asks the server for a fresh (secret, code) pair.
func (c *Client) QuickConnectInitiate(ctx context.Context) (*QuickConnect, error) {
	var result quickConnectResult
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/QuickConnect/Initiate", "", nil, &result); err != nil {
		return nil, err
	}
	if result.Secret == "" || result.Code == "" {
		return nil, errors.New("quick connect result missing secret or code")
	}
	if c.log != nil {
		c.log.Debug("quick connect initiated", "code", result.Code)
	}
	return &QuickConnect{Secret: result.Secret, Code: result.Code}, nil
}

// QuickConnectPoll asks whether the out-of-band approval has completed.
// The caller owns the polling cadence; this is a single idempotent read.
func (c *Client) QuickConnectPoll(ctx context.Context, secret string) (bool, error) {
	u := c.baseURL + "/QuickConnect/Connect?Secret=" + url.QueryEscape(secret)
	var result quickConnectResult
	if err := c.do(ctx, http.MethodGet, u, "", nil, &result); err != nil {
		return false, err
	}
	return result.Authenticated, nil
}

// QuickConnectAuthenticate exchanges an approved secret for a session
// token and registers this client's capabilities with the server.
func (c *Client) QuickConnectAuthenticate(ctx context.Context, secret string) (*Session, error) {
	var result authenticationResult
	err := c.do(ctx, http.MethodPost, c.baseURL+"/Users/AuthenticateWithQuickConnect", "",
		quickConnectDto{Secret: secret}, &result)
	if err != nil {
		return nil, err
	}
	if result.User == nil || result.User.ID == "" || result.AccessToken == "" {
		return nil, errors.New("authentication result missing user or token")
	}

	session := &Session{UserID: result.User.ID, Token: result.AccessToken}
	caps := capabilitiesDto{PlayableMediaTypes: []string{"Video"}, SupportedCommands: []string{}}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/Sessions/Capabilities/Full", session.Token, caps, nil); err != nil {
		return nil, fmt.Errorf("register capabilities: %w", err)
	}

	if c.log != nil {
		c.log.Debug("quick connect authenticated", "user_id", session.UserID)
	}
	return session, nil
}

// WhoAmI fetches the session's own user record. Used as a cheap,
// side-effect-free credential check.
func (c *Client) WhoAmI(ctx context.Context, session Session) (*User, error) {
	var user User
	u := c.baseURL + "/Users/" + url.PathEscape(session.UserID)
	if err := c.do(ctx, http.MethodGet, u, session.Token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
