// Package credential stores the Fastmail API token and the CardDAV
// app password in the system keyring. Environment variables take
// precedence so CI and scripts never touch the keyring.
package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "fastmailctl"

// Keyring keys and their environment variable overrides.
const (
	KeyAPIToken    = "api-token"
	KeyUsername    = "carddav-username"
	KeyAppPassword = "carddav-app-password"

	EnvAPIToken    = "FASTMAIL_API_TOKEN"
	EnvUsername    = "FASTMAIL_USERNAME"
	EnvAppPassword = "FASTMAIL_APP_PASSWORD"
)

var envOverrides = map[string]string{
	KeyAPIToken:    EnvAPIToken,
	KeyUsername:    EnvUsername,
	KeyAppPassword: EnvAppPassword,
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/fastmailctl/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("fastmailctl-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key. The matching environment
// variable, when set, wins over the keyring.
func Get(key string) (string, error) {
	if env := envOverrides[key]; env != "" {
		if value := os.Getenv(env); value != "" {
			return value, nil
		}
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
