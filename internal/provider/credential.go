package provider

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Credential states. The handshake is a pure value-in/value-out state
// machine so credentials survive restarts as opaque JSON on the
// connection row; no password is ever retained.
const (
	StateQcPoll = "qc_poll"
	StateAuth   = "auth"
	StateFailed = "failed"
)

// ErrNotAuthenticated is returned when an operation needs a resolved
// session but the credential is still polling or has failed.
var ErrNotAuthenticated = errors.New("credential is not an authenticated session")

// Credential is one state of the handshake:
//
//	qc_poll: an out-of-band approval is pending (secret, code)
//	auth:    a resolved session (id, token)
//	failed:  the handshake dead-ended (cause); restart to recover
type Credential struct {
	Type string `json:"type"`

	Secret string `json:"secret,omitempty"`
	Code   string `json:"code,omitempty"`

	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`

	Cause string `json:"cause,omitempty"`
}

// QcPoll builds an in-flight handshake credential.
func QcPoll(secret, code string) Credential {
	return Credential{Type: StateQcPoll, Secret: secret, Code: code}
}

// Auth builds a resolved session credential.
func Auth(id, token string) Credential {
	return Credential{Type: StateAuth, ID: id, Token: token}
}

// Failed builds the absorbing failure state.
func Failed(cause string) Credential {
	return Credential{Type: StateFailed, Cause: cause}
}

// IsAuth reports whether the credential is a resolved session.
func (c Credential) IsAuth() bool { return c.Type == StateAuth }

// Session returns the resolved (id, token) pair, or ErrNotAuthenticated.
func (c Credential) Session() (id, token string, err error) {
	if c.Type != StateAuth {
		return "", "", ErrNotAuthenticated
	}
	return c.ID, c.Token, nil
}

// ParseCredential decodes a persisted credential blob and validates its
// discriminator.
func ParseCredential(raw json.RawMessage) (Credential, error) {
	var c Credential
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	switch c.Type {
	case StateQcPoll, StateAuth, StateFailed:
		return c, nil
	}
	return Credential{}, fmt.Errorf("unknown credential state %q", c.Type)
}
