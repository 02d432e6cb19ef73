package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "instagraph"
	keyringPrefix  = "session_"
	keyringProbe   = "probe"
)

// KeyringStore keeps session strings in the system keychain, one entry
// per name under the "instagraph" service
type KeyringStore struct{}

// NewKeyringStore returns a store once a probe entry round-trips
func NewKeyringStore() (*KeyringStore, error) {
	if err := keyring.Set(keyringService, keyringProbe, keyringProbe); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, keyringProbe)

	return &KeyringStore{}, nil
}

func keyringEntry(username string) string {
	return keyringPrefix + username
}

func (k *KeyringStore) Store(account *Account) error {
	data, err := encodeAccount(account)
	if err != nil {
		return err
	}
	if err := keyring.Set(keyringService, keyringEntry(account.Username), string(data)); err != nil {
		return fmt.Errorf("keychain write for %s: %w", account.Username, err)
	}
	return nil
}

func (k *KeyringStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	secret, err := keyring.Get(keyringService, keyringEntry(username))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return nil, ErrCredentialsNotFound
	case err != nil:
		return nil, fmt.Errorf("keychain read for %s: %w", username, err)
	}

	return decodeAccount([]byte(secret))
}

// List always returns an empty slice: go-keyring cannot enumerate a service
func (k *KeyringStore) List() ([]*Account, error) {
	return []*Account{}, nil
}

func (k *KeyringStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	err := keyring.Delete(keyringService, keyringEntry(username))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrCredentialsNotFound
	case err != nil:
		return fmt.Errorf("keychain delete for %s: %w", username, err)
	}
	return nil
}

func (k *KeyringStore) Exists(username string) bool {
	_, err := k.Retrieve(username)
	return err == nil
}
