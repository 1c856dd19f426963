package rest

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/shoecart/internal/domain"
	"github.com/Gunvolt24/shoecart/internal/notify"
	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/httpx"
)

// kindBadRequest - kind ответа для ошибок разбора запроса (не доменный).
const kindBadRequest = "bad_request"

type Handler struct {
	service ports.CartService
	log     ports.Logger
	timeout time.Duration
}

// NewHandler - timeout ограничивает одну операцию корзины вместе с походами в витрину (0 - без лимита).
func NewHandler(service ports.CartService, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{service: service, log: log, timeout: timeout}
}

// amountRequest - тело PUT /cart/items/:id.
type amountRequest struct {
	Amount *int `json:"amount" binding:"required"`
}

// errorResponse - тело ответа при отказе.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// NewRouter - otelServiceName пустой - без otelgin.
func NewRouter(h *Handler, staticDir, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/cart", h.getCart)
	items := r.Group("/cart/items")
	items.POST("/:id", h.addProduct)
	items.PUT("/:id", h.updateProductAmount)
	items.DELETE("/:id", h.removeProduct)

	if staticDir != "" {
		r.Static("/static", staticDir)
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found", Kind: kindBadRequest})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Kind: kindBadRequest})
	})

	return r
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.service.Cart(c.Request.Context())))
}

func (h *Handler) addProduct(c *gin.Context) {
	id, err := httpx.ParseProductID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kindBadRequest})
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	cart, err := h.service.AddProduct(ctx, id)
	h.respond(c, domain.OpAdd, cart, err)
}

func (h *Handler) removeProduct(c *gin.Context) {
	id, err := httpx.ParseProductID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kindBadRequest})
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	cart, err := h.service.RemoveProduct(ctx, id)
	h.respond(c, domain.OpRemove, cart, err)
}

func (h *Handler) updateProductAmount(c *gin.Context) {
	id, err := httpx.ParseProductID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kindBadRequest})
		return
	}
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "body must be {\"amount\": <int>}", Kind: kindBadRequest})
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	cart, err := h.service.UpdateProductAmount(ctx, domain.AmountUpdate{ProductID: id, Amount: *req.Amount})
	h.respond(c, domain.OpUpdate, cart, err)
}

// ------вспомогательные функции------

func (h *Handler) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *Handler) respond(c *gin.Context, op domain.Operation, cart domain.Cart, err error) {
	if err == nil {
		c.JSON(http.StatusOK, nonNil(cart))
		return
	}

	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.log.Errorf(c.Request.Context(), "cart %s failed status=%d err=%v", op, status, err)
	}
	c.JSON(status, errorResponse{Error: notify.Message(op, err), Kind: string(kind)})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindOutOfStock:
		return http.StatusConflict
	case domain.KindLookupFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(cart domain.Cart) domain.Cart {
	if cart == nil {
		return domain.Cart{}
	}
	return cart
}
