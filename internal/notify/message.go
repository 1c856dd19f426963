package notify

import "github.com/Gunvolt24/shoecart/internal/domain"

// Тексты пользовательских уведомлений.
const (
	MsgOutOfStock    = "Requested quantity is out of stock"
	MsgAddFailed     = "Failed to add product"
	MsgRemoveFailed  = "Failed to remove product"
	MsgUpdateFailed  = "Failed to update product quantity"
	msgUnknownFailed = "Cart operation failed"
)

// Message - текст уведомления для отказа операции op; "" для err == nil.
// Дефицит остатка называется отдельно, остальные отказы - общей фразой операции.
func Message(op domain.Operation, err error) string {
	if err == nil {
		return ""
	}
	kind := domain.KindOf(err)

	switch op {
	case domain.OpAdd:
		if kind == domain.KindOutOfStock {
			return MsgOutOfStock
		}
		return MsgAddFailed
	case domain.OpRemove:
		return MsgRemoveFailed
	case domain.OpUpdate:
		if kind == domain.KindOutOfStock {
			return MsgOutOfStock
		}
		return MsgUpdateFailed
	default:
		return msgUnknownFailed
	}
}
