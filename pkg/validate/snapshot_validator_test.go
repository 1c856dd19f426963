package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/Gunvolt24/shoecart/internal/domain"
)

func TestSnapshotValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cart    domain.Cart
		wantErr bool
	}{
		{"empty", domain.Cart{}, false},
		{"nil", nil, false},
		{"single", domain.Cart{{ID: 1, Title: "Shoe", Amount: 1}}, false},
		{"several", domain.Cart{{ID: 1, Amount: 2}, {ID: 5, Amount: 1}}, false},
		{"zero_amount", domain.Cart{{ID: 1, Amount: 0}}, true},
		{"negative_amount", domain.Cart{{ID: 1, Amount: -2}}, true},
		{"zero_id", domain.Cart{{ID: 0, Amount: 1}}, true},
		{"duplicate_id", domain.Cart{{ID: 3, Amount: 1}, {ID: 3, Amount: 4}}, true},
	}

	v := NewSnapshotValidator()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(context.Background(), tt.cart)
			if tt.wantErr && !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("want ErrInvalidSnapshot, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecodeSnapshot_OK(t *testing.T) {
	ctx := context.Background()

	cart, err := DecodeSnapshot(ctx, NewSnapshotValidator(), []byte(snapshotJSON(1, 2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart) != 1 || cart[0].ID != 1 || cart[0].Amount != 2 || cart[0].Title != "Shoe 1" {
		t.Fatalf("unexpected cart: %+v", cart)
	}
	if cart[0].Price.String() != "179.9" {
		t.Fatalf("price: want 179.9, got %s", cart[0].Price)
	}
}

func TestDecodeSnapshot_EmptyAndNull(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"[]", "null"} {
		cart, err := DecodeSnapshot(ctx, NewSnapshotValidator(), []byte(raw))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if cart == nil || len(cart) != 0 {
			t.Fatalf("%s: want empty non-nil cart, got %#v", raw, cart)
		}
	}
}

func TestDecodeSnapshot_Rejects(t *testing.T) {
	ctx := context.Background()

	tests := map[string]string{
		"broken":        `[{"id":1`,
		"unknown_field": `[{"id":1,"amount":1,"color":"red"}]`,
		"trailing_data": `[{"id":1,"amount":1}] []`,
		"not_array":     `{"id":1,"amount":1}`,
		"zero_amount":   `[{"id":1,"amount":0}]`,
		"duplicate":     `[{"id":1,"amount":1},{"id":1,"amount":2}]`,
	}
	for name, raw := range tests {
		if _, err := DecodeSnapshot(ctx, NewSnapshotValidator(), []byte(raw)); !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("%s: want ErrInvalidSnapshot, got %v", name, err)
		}
	}
}

func TestEncodeSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()

	orig, err := DecodeSnapshot(ctx, NewSnapshotValidator(), []byte(snapshotJSON(7, 3)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw, err := EncodeSnapshot(orig)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeSnapshot(ctx, NewSnapshotValidator(), []byte(raw))
	if err != nil {
		t.Fatalf("decode back: %v", err)
	}
	if !back.Equal(orig) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, orig)
	}

	if empty, _ := EncodeSnapshot(nil); empty != "[]" {
		t.Fatalf("nil cart must encode as [], got %s", empty)
	}
}
