package ports

import (
	"context"

	"github.com/Gunvolt24/shoecart/internal/domain"
)

type SnapshotValidator interface {
	Validate(ctx context.Context, cart domain.Cart) error
}
