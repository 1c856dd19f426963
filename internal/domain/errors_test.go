package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{&OpError{Op: OpAdd, ProductID: 1, Err: ErrOutOfStock}, KindOutOfStock},
		{&OpError{Op: OpRemove, ProductID: 1, Err: ErrNotFound}, KindNotFound},
		{&OpError{Op: OpAdd, ProductID: 1, Err: fmt.Errorf("%w: stock: timeout", ErrLookupFailure)}, KindLookupFailure},
		{fmt.Errorf("wrap: %w", &OpError{Op: OpUpdate, ProductID: 2, Err: ErrPersistFailure}), KindPersistFailure},
		{errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, KindOf(tt.err), "err=%v", tt.err)
	}
}

func TestOpError(t *testing.T) {
	err := &OpError{Op: OpUpdate, ProductID: 42, Err: ErrOutOfStock}
	require.Equal(t, "cart update product_id=42: requested amount out of stock", err.Error())
	require.ErrorIs(t, err, ErrOutOfStock)

	op, ok := OpOf(fmt.Errorf("ctx: %w", err))
	require.True(t, ok)
	require.Equal(t, OpUpdate, op)

	_, ok = OpOf(errors.New("plain"))
	require.False(t, ok)
}
