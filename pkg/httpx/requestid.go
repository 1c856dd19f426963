package httpx

import (
	"github.com/Gunvolt24/shoecart/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID - заголовок корреляции запроса.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware:
// - принимает X-Request-ID от клиента или генерирует UUID;
// - кладёт request_id и источник "http" в контекст;
// - возвращает request_id в ответном заголовке.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := ctxmeta.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxmeta.WithSource(ctx, ctxmeta.SourceHTTP)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
