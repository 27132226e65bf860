package audience

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_KEY_PREFIX = "audience:sizes:"
	VALKEY_OP_TIMEOUT = 3 * time.Second
)

// ValkeyStore backs the audience cache with a Valkey instance so several
// processes can share one set of member counts. Same entry codec and
// lazy staleness rule as the in-process store; keys are never expired by
// the server.
type ValkeyStore struct {
	client valkey.Client
}

func NewValkeyStore() (*ValkeyStore, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{os.Getenv("VALKEY_INIT_ADDRESS")},
		Password:         os.Getenv("VALKEY_PASSWORD"),
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if os.Getenv("VALKEY_TLS") == "true" {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyStore] failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), VALKEY_OP_TIMEOUT)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyStore] failed to ping valkey: %w", err)
	}

	slog.Info("[ValkeyStore] Connected to valkey")
	return &ValkeyStore{client: client}, nil
}

func (v *ValkeyStore) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), VALKEY_OP_TIMEOUT)
	defer cancel()

	raw, err := v.client.Do(ctx, v.client.B().Get().Key(VALKEY_KEY_PREFIX+key).Build()).AsBytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (v *ValkeyStore) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), VALKEY_OP_TIMEOUT)
	defer cancel()

	return v.client.Do(ctx, v.client.B().Set().Key(VALKEY_KEY_PREFIX+key).Value(string(value)).Build()).Error()
}

func (v *ValkeyStore) Close() {
	v.client.Close()
}
