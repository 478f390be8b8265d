package enums

import "fmt"

// CartChangeType labels a realtime cart change notification. The
// synchronizer refetches on every type, so unknown values still count
// as a change.
type CartChangeType string

const (
	CartChangeFieldChanged CartChangeType = "cart_field_changed"
	CartChangeItemAdded    CartChangeType = "item_added"
	CartChangeItemChanged  CartChangeType = "item_changed"
	CartChangeItemRemoved  CartChangeType = "item_removed"
)

var validCartChangeTypes = []CartChangeType{
	CartChangeFieldChanged,
	CartChangeItemAdded,
	CartChangeItemChanged,
	CartChangeItemRemoved,
}

// String implements fmt.Stringer.
func (c CartChangeType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartChangeType.
func (c CartChangeType) IsValid() bool {
	for _, candidate := range validCartChangeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartChangeType converts raw input into a CartChangeType.
func ParseCartChangeType(value string) (CartChangeType, error) {
	for _, candidate := range validCartChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart change type %q", value)
}
