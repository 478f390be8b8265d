package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/packfinderz-pos/pkg/errors"
	"github.com/google/uuid"
)

type store interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key string, members ...string) (int64, error)
	ZRangeMembers(ctx context.Context, key string) ([]string, error)
	QueueKey(storeID, locationID string) string
}

// Entry is one waiting customer at a location.
type Entry struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name,omitempty"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Service manages the per-location customer queue. The checkout
// post-completion sequence removes the served customer here so they are
// not double-served at another register.
type Service struct {
	store store
}

// NewService builds a queue service backed by the provided store.
func NewService(store store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("queue store required")
	}
	return &Service{store: store}, nil
}

// Join adds a customer to the location's queue. Joining twice moves the
// entry to the back rather than duplicating it.
func (s *Service) Join(ctx context.Context, storeID, locationID uuid.UUID, entry Entry) error {
	if entry.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if entry.JoinedAt.IsZero() {
		entry.JoinedAt = time.Now()
	}

	key := s.store.QueueKey(storeID.String(), locationID.String())
	// Re-joining replaces the old entry for the same customer.
	if err := s.removeCustomer(ctx, key, entry.CustomerID); err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode queue entry")
	}
	if err := s.store.ZAdd(ctx, key, float64(entry.JoinedAt.UnixMilli()), string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "join queue")
	}
	return nil
}

// Remove drops the customer's entry if present. Removing an absent
// customer is not an error.
func (s *Service) Remove(ctx context.Context, storeID, locationID, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	key := s.store.QueueKey(storeID.String(), locationID.String())
	return s.removeCustomer(ctx, key, customerID)
}

// List returns the queue in join order. Undecodable members are skipped.
func (s *Service) List(ctx context.Context, storeID, locationID uuid.UUID) ([]Entry, error) {
	key := s.store.QueueKey(storeID.String(), locationID.String())
	members, err := s.store.ZRangeMembers(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list queue")
	}
	entries := make([]Entry, 0, len(members))
	for _, member := range members {
		var entry Entry
		if err := json.Unmarshal([]byte(member), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) removeCustomer(ctx context.Context, key string, customerID uuid.UUID) error {
	members, err := s.store.ZRangeMembers(ctx, key)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read queue")
	}
	var stale []string
	for _, member := range members {
		var entry Entry
		if err := json.Unmarshal([]byte(member), &entry); err != nil {
			continue
		}
		if entry.CustomerID == customerID {
			stale = append(stale, member)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if _, err := s.store.ZRem(ctx, key, stale...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove queue entry")
	}
	return nil
}
