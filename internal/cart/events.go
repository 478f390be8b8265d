package cart

import (
	"time"

	"github.com/angelmondragon/packfinderz-pos/pkg/enums"
	"github.com/google/uuid"
)

// ChangeEvent notifies subscribers that a cart changed. The payload is
// deliberately thin: any event for a tracked cart triggers the same
// authoritative refetch, so nothing beyond the cart id is inspected.
type ChangeEvent struct {
	CartID     uuid.UUID            `json:"cart_id"`
	Type       enums.CartChangeType `json:"type"`
	OccurredAt time.Time            `json:"occurred_at"`
}
