package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/internity/storefront/internal/domain"
)

var (
	ErrStateNotFound = errors.New("no persisted state for session")
)

// stateVersion is bumped when the persisted item shape changes. A payload
// with an unknown version is treated as unparseable and the store starts
// empty rather than guessing at a migration.
const stateVersion = 1

// CartRepository persists one session's full cart line-item collection.
// The drawer flag is transient UI state and is never written.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLineItem, error)
	Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error
	Delete(ctx context.Context, sessionID string) error
}

// WishlistRepository persists one session's wishlist entries.
type WishlistRepository interface {
	Load(ctx context.Context, sessionID string) ([]domain.WishlistItem, error)
	Save(ctx context.Context, sessionID string, items []domain.WishlistItem) error
	Delete(ctx context.Context, sessionID string) error
}

// envelope wraps persisted items so the payload carries its schema version.
type envelope struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

func marshalState(items any) ([]byte, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items failed: %w", err)
	}
	data, err := json.Marshal(envelope{Version: stateVersion, Items: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope failed: %w", err)
	}
	return data, nil
}

func unmarshalState(data []byte, items any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("unmarshal envelope failed: %w", err)
	}
	if env.Version != stateVersion {
		return fmt.Errorf("unsupported state version %d", env.Version)
	}
	if err := json.Unmarshal(env.Items, items); err != nil {
		return fmt.Errorf("unmarshal items failed: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("internity:cart:%s", sessionID)
}

func wishlistKey(sessionID string) string {
	return fmt.Sprintf("internity:wishlist:%s", sessionID)
}
