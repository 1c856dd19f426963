package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/ports"
)

// ErrInvalidCommand - сообщение не является корректной командой корзины. Такие сообщения коммитятся без повтора.
var ErrInvalidCommand = errors.New("invalid cart command")

// Операции в поле "op".
const (
	CommandAdd    = "add"
	CommandRemove = "remove"
	CommandUpdate = "update"
)

// Command - команда корзины из топика: {"op":"add","product_id":1} или {"op":"update","product_id":1,"amount":3}.
type Command struct {
	Op        string `json:"op"`
	ProductID int    `json:"product_id"`
	Amount    *int   `json:"amount,omitempty"`
}

// DecodeCommand - строгий разбор команды: неизвестные поля и хвост после объекта отклоняются.
func DecodeCommand(raw []byte) (Command, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var cmd Command
	if err := dec.Decode(&cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if dec.More() {
		return Command{}, fmt.Errorf("%w: trailing data", ErrInvalidCommand)
	}

	cmd.Op = strings.ToLower(strings.TrimSpace(cmd.Op))
	if cmd.ProductID <= 0 {
		return Command{}, fmt.Errorf("%w: product_id must be positive", ErrInvalidCommand)
	}
	switch cmd.Op {
	case CommandAdd, CommandRemove:
	case CommandUpdate:
		if cmd.Amount == nil {
			return Command{}, fmt.Errorf("%w: update requires amount", ErrInvalidCommand)
		}
	default:
		return Command{}, fmt.Errorf("%w: unknown op %q", ErrInvalidCommand, cmd.Op)
	}
	return cmd, nil
}

// Applier - применяет команды из топика к корзине.
type Applier struct {
	service ports.CartService
}

func NewApplier(service ports.CartService) *Applier {
	return &Applier{service: service}
}

// Apply - разбирает и выполняет одну команду. Ошибки операции возвращаются как есть (*domain.OpError).
func (a *Applier) Apply(ctx context.Context, raw []byte) error {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		return err
	}

	switch cmd.Op {
	case CommandAdd:
		_, err = a.service.AddProduct(ctx, cmd.ProductID)
	case CommandRemove:
		_, err = a.service.RemoveProduct(ctx, cmd.ProductID)
	case CommandUpdate:
		_, err = a.service.UpdateProductAmount(ctx, domain.AmountUpdate{ProductID: cmd.ProductID, Amount: *cmd.Amount})
	}
	return err
}
