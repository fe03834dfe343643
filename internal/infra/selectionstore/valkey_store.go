package selectionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/foodeat/internal/domain/selection"
)

// ValkeyStore persists selections as JSON strings in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "selection"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, viewerID string) (selection.Selection, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(viewerID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return selection.Selection{}, false, nil
		}
		return selection.Selection{}, false, err
	}
	var sel selection.Selection
	if err := json.Unmarshal([]byte(payload), &sel); err != nil {
		return selection.Selection{}, false, err
	}
	return sel, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, viewerID string, sel selection.Selection, ttl time.Duration) error {
	payload, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(viewerID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Delete(ctx context.Context, viewerID string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.key(viewerID)).Build()).Error()
}

func (s *ValkeyStore) key(viewerID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, viewerID)
}

var _ selection.Store = (*ValkeyStore)(nil)
