package auth

import (
	"os"
	"time"
)

const (
	envSession  = "INSTAGRAPH_ACCOUNT_SESSION"
	envUsername = "INSTAGRAPH_ACCOUNT_NAME"
)

// EnvironmentStore is a read-only CredentialStore over INSTAGRAPH_ACCOUNT_SESSION
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment session. An empty username matches it;
// otherwise username must equal INSTAGRAPH_ACCOUNT_NAME.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	sess := os.Getenv(envSession)
	if sess == "" {
		return nil, ErrCredentialsNotFound
	}

	name := os.Getenv(envUsername)
	if name == "" {
		name = "default"
	}
	if username != "" && username != name {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Username:     name,
		Session:      sess,
		LastModified: time.Time{},
	}, nil
}

// List returns a single account if the environment holds a session
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if username matches the environment session
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
