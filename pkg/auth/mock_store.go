package auth

import "sync"

// MockStore keeps accounts in memory. Setting one of the *Error fields
// makes the matching method fail with it.
type MockStore struct {
	mu       sync.RWMutex
	accounts map[string]Account

	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

func NewMockStore() *MockStore {
	return &MockStore{accounts: map[string]Account{}}
}

// NewMockManager returns a manager whose only store is the returned mock
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}

func (m *MockStore) Store(account *Account) error {
	switch {
	case m.StoreError != nil:
		return m.StoreError
	case account == nil || account.Username == "":
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	m.accounts[account.Username] = *account
	m.mu.Unlock()
	return nil
}

func (m *MockStore) Retrieve(username string) (*Account, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	account, ok := m.lookup(username)
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

func (m *MockStore) List() ([]*Account, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Account, 0, len(m.accounts))
	for name := range m.accounts {
		account := m.accounts[name]
		out = append(out, &account)
	}
	return out, nil
}

func (m *MockStore) Delete(username string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.lookup(username); !ok {
		return ErrCredentialsNotFound
	}

	m.mu.Lock()
	delete(m.accounts, username)
	m.mu.Unlock()
	return nil
}

func (m *MockStore) Exists(username string) bool {
	_, ok := m.lookup(username)
	return ok
}

// Count is the number of accounts held
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

func (m *MockStore) lookup(username string) (Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[username]
	return account, ok
}
