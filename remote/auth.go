package remote

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/utils"
)

// CodeProvider supplies the platform login credential (the short-lived code
// the host platform hands out). It is the only auth input this client needs.
type CodeProvider func(ctx context.Context) (string, error)

// LoginResult is the successful login response: the bearer token plus the
// raw user profile for the caller to present.
type LoginResult struct {
	AccessToken string
	UserProfile json.RawMessage
}

// Login exchanges a platform credential for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, provider CodeProvider) (LoginResult, error) {
	code, err := provider(ctx)
	if err != nil {
		return LoginResult{}, &utils.NetworkError{Message: "obtain login code", Err: err}
	}

	body := map[string]string{"code": code}
	data, err := c.do(ctx, http.MethodPost, endpointLogin, nil, body, false)
	if err != nil {
		return LoginResult{}, err
	}

	var payload loginPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return LoginResult{}, &utils.BusinessError{Code: -1, Message: "malformed login payload"}
	}
	if payload.AccessToken == "" {
		return LoginResult{}, &utils.BusinessError{Code: -1, Message: "login response carried no access token"}
	}

	if err := c.session.SetToken(payload.AccessToken); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{AccessToken: payload.AccessToken, UserProfile: payload.User}, nil
}

// AutoLogin brings the session online: reuse a still-usable token, otherwise
// run a fresh login. Returns whether the client ended up online; a false
// return means the caller should continue in local mode.
func (c *Client) AutoLogin(ctx context.Context, provider CodeProvider) bool {
	if c.session.CheckLoginStatus() {
		c.session.SetOnline(true)
		return true
	}
	if provider == nil {
		c.session.SetOnline(false)
		return false
	}
	if _, err := c.Login(ctx, provider); err != nil {
		config.LogError(c.logger, "remote", "AutoLogin", "login", nil, err)
		c.session.SetOnline(false)
		return false
	}
	c.session.SetOnline(true)
	return true
}
