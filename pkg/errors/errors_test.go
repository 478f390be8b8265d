package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageIncludesCode(t *testing.T) {
	err := New(CodeValidation, "quantity must be at least 1")
	if err.Error() != "VALIDATION_ERROR: quantity must be at least 1" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "backend call failed")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error must unwrap to its cause")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsNestedTypedError(t *testing.T) {
	inner := New(CodeTimeout, "settlement timed out")
	outer := fmt.Errorf("submitting sale: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through wrapping")
	}
	if typed.Code() != CodeTimeout {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors must not coerce to a typed error")
	}
	if As(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "checkout already in progress")
	if !HasCode(err, CodeConflict) {
		t.Fatal("expected matching code")
	}
	if HasCode(err, CodeTimeout) {
		t.Fatal("unexpected code match")
	}
	if HasCode(stdErrors.New("plain"), CodeConflict) {
		t.Fatal("plain error must not match any code")
	}
}

func TestWithDetails(t *testing.T) {
	details := map[string]string{"shortfall": "$0.01"}
	err := New(CodeInsufficientFunds, "tendered amount is below the cart total").WithDetails(details)

	got, ok := err.Details().(map[string]string)
	if !ok || got["shortfall"] != "$0.01" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInsufficientFunds, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeGateway, http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("metadata for %s: status %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("MYSTERY"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes must map to internal, got %d", meta.HTTPStatus)
	}
}
