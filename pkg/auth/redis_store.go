package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "instagraph:session:"
	redisTimeout   = 2 * time.Second
)

// RedisStore implements CredentialStore on a shared Redis, so several
// machines can use the same saved sessions
type RedisStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewRedisStore connects to addr and checks the connection with a PING
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis not available at %s: %w", addr, err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client goredis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: redisKeyPrefix}
}

func (r *RedisStore) key(username string) string {
	return r.prefix + username
}

// Store saves the account under instagraph:session:<username>
func (r *RedisStore) Store(account *Account) error {
	data, err := encodeAccount(account)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(account.Username), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store in redis: %w", err)
	}
	return nil
}

// Retrieve gets the account saved for username
func (r *RedisStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from redis: %w", err)
	}

	return decodeAccount(data)
}

// List scans every key under the prefix
func (r *RedisStore) List() ([]*Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	var accounts []*Account
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", iter.Val(), err)
		}

		account, err := decodeAccount(data)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan redis: %w", err)
	}

	return accounts, nil
}

// Delete removes the account saved for username
func (r *RedisStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	n, err := r.client.Del(ctx, r.key(username)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if n == 0 {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists checks if a session is saved for username
func (r *RedisStore) Exists(username string) bool {
	if username == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.key(username)).Result()
	return err == nil && n > 0
}

// Close releases the connection pool
func (r *RedisStore) Close() error {
	return r.client.Close()
}
