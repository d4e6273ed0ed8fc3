// Package credentials stores remote address book passwords in the OS keyring.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/zalando/go-keyring"
)

// Set stores the password of user under the application keyring service.
func Set(user, password string) error {
	if user == "" {
		return errors.New(config.ErrKeyringUser)
	}
	if err := keyring.Set(config.KeyringService, user, password); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
	}
	slog.Debug(config.MsgPassStored,
		config.LogKeyComponent, config.CompKeyring,
		config.LogKeyUser, user,
	)
	return nil
}

// Get returns the stored password of user.
func Get(user string) (string, error) {
	if user == "" {
		return "", errors.New(config.ErrKeyringUser)
	}
	p, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyringGet, err)
	}
	return p, nil
}

// Lookup is Get for callers that can proceed without a password: a missing
// or unreadable entry yields "" and a debug record.
func Lookup(user string) string {
	if user == "" {
		return ""
	}
	p, err := Get(user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompKeyring,
			config.LogKeyUser, user,
			config.LogKeyError, err,
		)
		return ""
	}
	return p
}

// Delete removes the stored password of user. A missing entry is not an error.
func Delete(user string) error {
	if user == "" {
		return errors.New(config.ErrKeyringUser)
	}
	err := keyring.Delete(config.KeyringService, user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%s: %w", config.ErrKeyringDelete, err)
	}
	return nil
}
