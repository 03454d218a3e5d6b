package engine

import (
	"log/slog"

	"github.com/tartampluch/famcal/internal/config"
	"github.com/zalando/go-keyring"
)

// Credentials resolves the password of a source user.
type Credentials interface {
	Password(user string) (string, error)
}

// KeyringCredentials reads passwords from the OS keyring.
type KeyringCredentials struct {
	Service string
}

// Password returns the stored secret for user.
func (k KeyringCredentials) Password(user string) (string, error) {
	service := k.Service
	if service == "" {
		service = config.KeyringService
	}
	return keyring.Get(service, user)
}

// StorePassword saves a secret for user under the application service.
func StorePassword(user, pass string) error {
	return keyring.Set(config.KeyringService, user, pass)
}

// lookupPassword never fails: a missing secret means an anonymous request.
func lookupPassword(c Credentials, user string) string {
	if c == nil || user == "" {
		return ""
	}
	p, err := c.Password(user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyUser, user,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompEngine)
		return ""
	}
	return p
}
