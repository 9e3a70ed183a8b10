package libkv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// valkeyManager implements Manager on top of a Valkey instance.
type valkeyManager struct {
	mu     sync.RWMutex
	client valkey.Client
	closed bool
}

// NewManager connects to Valkey and verifies the connection with a ping
// bounded by timeout.
func NewManager(cfg Config, timeout time.Duration) (Manager, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey connection failed: %w", err)
	}

	return &valkeyManager{client: client}, nil
}

func (m *valkeyManager) Executor(ctx context.Context) (KV, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	return &valkeyKV{client: m.client}, nil
}

func (m *valkeyManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.client.Close()
	return nil
}

type valkeyKV struct {
	client valkey.Client
}

func (k *valkeyKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	resp := k.client.Do(ctx, k.client.B().Get().Key(key).Build())
	data, err := resp.AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("valkey get failed: %w", err)
	}
	return data, nil
}

func (k *valkeyKV) Set(ctx context.Context, key string, value json.RawMessage) error {
	cmd := k.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()
	if err := k.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set failed: %w", err)
	}
	return nil
}

func (k *valkeyKV) Delete(ctx context.Context, key string) error {
	deleted, err := k.client.Do(ctx, k.client.B().Del().Key(key).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("valkey del failed: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (k *valkeyKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := k.client.Do(ctx, k.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("valkey exists failed: %w", err)
	}
	return n > 0, nil
}
