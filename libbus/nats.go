package libbus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

// Config holds NATS connection settings.
type Config struct {
	NATSURL      string
	NATSUser     string
	NATSPassword string
}

// natsMessenger implements Messenger on a NATS connection.
type natsMessenger struct {
	nc *nats.Conn
}

// NewPubSub connects to NATS and returns a Messenger.
func NewPubSub(ctx context.Context, cfg *Config) (Messenger, error) {
	opts := []nats.Option{
		nats.Timeout(10 * time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}
	if cfg.NATSUser != "" {
		opts = append(opts, nats.UserInfo(cfg.NATSUser, cfg.NATSPassword))
	}
	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &natsMessenger{nc: nc}, nil
}

func (p *natsMessenger) Publish(ctx context.Context, subject string, data []byte) error {
	if p.nc.IsClosed() {
		return ErrConnectionClosed
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func (p *natsMessenger) Stream(ctx context.Context, subject string, ch chan<- []byte) (Subscription, error) {
	if p.nc.IsClosed() {
		return nil, ErrConnectionClosed
	}
	sub, err := p.nc.Subscribe(subject, func(m *nats.Msg) {
		select {
		case ch <- m.Data:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return sub, nil
}

func (p *natsMessenger) Close() error {
	p.nc.Close()
	return nil
}

// SetupNatsInstance starts a disposable NATS container for tests and
// returns its client URL.
func SetupNatsInstance(ctx context.Context) (string, testcontainers.Container, func(), error) {
	cleanup := func() {}

	container, err := tcnats.Run(ctx, "docker.io/nats:2.10")
	if err != nil {
		return "", nil, cleanup, err
	}

	cleanup = func() {
		timeout := time.Second
		_ = container.Stop(ctx, &timeout)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		return "", container, cleanup, err
	}
	return url, container, cleanup, nil
}

// NewTestPubSub starts a NATS container and connects a Messenger to it.
// The returned cleanup stops the container.
func NewTestPubSub() (Messenger, func(), error) {
	ctx := context.Background()
	url, _, cleanup, err := SetupNatsInstance(ctx)
	if err != nil {
		return nil, cleanup, err
	}
	ps, err := NewPubSub(ctx, &Config{NATSURL: url})
	if err != nil {
		return nil, cleanup, err
	}
	wrapped := func() {
		_ = ps.Close()
		cleanup()
	}
	return ps, wrapped, nil
}
