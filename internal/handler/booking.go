package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Deeekaaay/EventManagement/internal/booking"
	"github.com/Deeekaaay/EventManagement/internal/clock"
	"github.com/Deeekaaay/EventManagement/internal/model"
	"github.com/Deeekaaay/EventManagement/internal/monitoring"
	"github.com/Deeekaaay/EventManagement/internal/queue"
	"github.com/Deeekaaay/EventManagement/internal/repository"
	queuepub "github.com/Deeekaaay/EventManagement/internal/service"
)

// BookingHandler owns the per-user cart and the checkout flow.  Cart
// reads hit the live event repository so displayed availability is
// current; the cached repository is only touched to invalidate listings
// after a successful checkout decrements seats.
type BookingHandler struct {
	Carts  *booking.CartStore
	Engine *booking.Engine
	Events *repository.EventRepo
	Cache  *repository.CachedEventRepo
	Orders *repository.OrderRepo
	Clock  clock.Clock
}

func NewBookingHandler(carts *booking.CartStore, engine *booking.Engine, events *repository.EventRepo, cache *repository.CachedEventRepo, orders *repository.OrderRepo, clk clock.Clock) *BookingHandler {
	if carts == nil || engine == nil || events == nil || orders == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &BookingHandler{Carts: carts, Engine: engine, Events: events, Cache: cache, Orders: orders, Clock: clk}
}

type cartItemResp struct {
	Event    model.Event `json:"event"`
	Quantity int         `json:"quantity"`
	Subtotal string      `json:"subtotal"`
}

func cartResponse(cart *booking.Cart) echo.Map {
	items := cart.Items()
	out := make([]cartItemResp, 0, len(items))
	for _, it := range items {
		out = append(out, cartItemResp{
			Event:    it.Event,
			Quantity: it.Quantity,
			Subtotal: it.Event.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2),
		})
	}
	return echo.Map{"items": out, "count": len(out)}
}

// GetCart handles GET /v1/cart.
func (h *BookingHandler) GetCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, cartResponse(h.Carts.Get(userID)))
}

type cartAddReq struct {
	EventID  uint64 `json:"event_id"`
	Quantity int    `json:"quantity"`
}

// AddToCart handles POST /v1/cart/items.  It runs a courtesy
// availability check against the live catalog so obviously doomed
// additions are rejected up front; checkout re-validates everything
// anyway, so a race slipping past here is still caught.
func (h *BookingHandler) AddToCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req cartAddReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetEvent(ctx, req.EventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	if ev == nil || !ev.Enabled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if dayIdx, ok := ev.Day.Index(); ok {
		todayIdx, _ := model.WeekdayOf(h.Clock.Now()).Index()
		if dayIdx < todayIdx {
			return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("%s (%s) has already taken place this week", ev.Title, ev.Day)})
		}
	}

	cart := h.Carts.Get(userID)
	if req.Quantity+cart.Quantity(ev.ID) > ev.Remaining() {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     fmt.Sprintf("only %d seats left for %s", ev.Remaining(), ev.Title),
			"remaining": ev.Remaining(),
		})
	}
	if err := cart.Add(*ev, req.Quantity); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, cartResponse(cart))
}

type cartUpdateReq struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem handles PUT /v1/cart/items/:eventId.  Quantity zero
// removes the line.
func (h *BookingHandler) UpdateCartItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := strconv.ParseUint(c.Param("eventId"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req cartUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be non-negative"})
	}

	cart := h.Carts.Get(userID)
	if req.Quantity == 0 {
		cart.Remove(eventID)
		return c.JSON(http.StatusOK, cartResponse(cart))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ev, err := h.Events.GetEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	if ev == nil || !ev.Enabled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if req.Quantity > ev.Remaining() {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     fmt.Sprintf("only %d seats left for %s", ev.Remaining(), ev.Title),
			"remaining": ev.Remaining(),
		})
	}
	if err := cart.Update(*ev, req.Quantity); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, cartResponse(cart))
}

// RemoveCartItem handles DELETE /v1/cart/items/:eventId.
func (h *BookingHandler) RemoveCartItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := strconv.ParseUint(c.Param("eventId"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	cart := h.Carts.Get(userID)
	cart.Remove(eventID)
	return c.JSON(http.StatusOK, cartResponse(cart))
}

// ClearCart handles DELETE /v1/cart.
func (h *BookingHandler) ClearCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	h.Carts.Get(userID).Clear()
	return c.NoContent(http.StatusNoContent)
}

type checkoutReq struct {
	ConfirmationCode string `json:"confirmation_code"`
}

// Checkout handles POST /v1/checkout.  Validation failures report every
// violation at once so the customer can fix the whole cart in one pass.
func (h *BookingHandler) Checkout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cart := h.Carts.Get(userID)
	order, err := h.Engine.Checkout(ctx, userID, getUserName(c), cart, req.ConfirmationCode)
	if err != nil {
		var vErr *booking.ValidationError
		var cErr *booking.CommitError
		switch {
		case errors.Is(err, booking.ErrEmptyCart):
			monitoring.TrackCheckout(monitoring.OutcomeEmptyCart)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
		case errors.As(err, &vErr):
			monitoring.TrackCheckout(monitoring.OutcomeValidation)
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":      "cart validation failed",
				"violations": vErr.Violations,
			})
		case errors.Is(err, booking.ErrInvalidConfirmationCode):
			monitoring.TrackCheckout(monitoring.OutcomeInvalidCode)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirmation code must be exactly six digits"})
		case errors.As(err, &cErr):
			// A lost race for the last seats is the client's problem to
			// retry with a fresh cart; anything else is ours.
			if errors.Is(err, repository.ErrInsufficientSeats) {
				monitoring.TrackCheckout(monitoring.OutcomeCommitFailed)
				return c.JSON(http.StatusConflict, echo.Map{"error": "order could not be committed, no tickets were sold"})
			}
			monitoring.TrackCheckout(monitoring.OutcomeError)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
		default:
			monitoring.TrackCheckout(monitoring.OutcomeError)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
		}
	}

	monitoring.TrackCheckout(monitoring.OutcomeCommitted)
	tickets := 0
	for _, it := range order.Items {
		tickets += it.Quantity
	}
	total, _ := order.TotalPrice.Float64()
	monitoring.TrackOrder(tickets, total)

	if h.Cache != nil {
		ids := make([]uint64, 0, len(order.Items))
		for _, it := range order.Items {
			ids = append(ids, it.EventID)
		}
		h.Cache.Invalidate(ctx, ids...)
	}

	// Best effort: a lost broker message never fails a committed order.
	_ = queuepub.PublishOrderCommitted(ctx, orderCommittedEvent(order))

	return c.JSON(http.StatusCreated, echo.Map{"order": order})
}

// MyOrders handles GET /v1/my-orders, newest first.
func (h *BookingHandler) MyOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}

// ExportMyOrders handles GET /v1/my-orders/export: the caller's full
// order history as a plain-text attachment.
func (h *BookingHandler) ExportMyOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.txt"`)
	return c.String(http.StatusOK, FormatOrdersText(orders))
}

// FormatOrdersText renders orders as the plain-text export body.
func FormatOrdersText(orders []model.Order) string {
	var b strings.Builder
	for i, o := range orders {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Order %s placed at %s\n", o.Number, o.PlacedAt.Format("2006-01-02 15:04:05"))
		for _, it := range o.Items {
			fmt.Fprintf(&b, "  %d x %s (%s, %s) @ %s\n", it.Quantity, it.Title, it.Venue, it.Day, it.PricePerTicket.StringFixed(2))
		}
		fmt.Fprintf(&b, "  Total: %s\n", o.TotalPrice.StringFixed(2))
	}
	return b.String()
}

func orderCommittedEvent(order model.Order) queue.OrderCommittedEvent {
	items := make([]queue.OrderCommittedItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, queue.OrderCommittedItem{
			EventID:        it.EventID,
			Title:          it.Title,
			Venue:          it.Venue,
			Day:            string(it.Day),
			Quantity:       it.Quantity,
			PricePerTicket: it.PricePerTicket.StringFixed(2),
		})
	}
	return queue.OrderCommittedEvent{
		OrderNumber:  order.Number,
		UserID:       order.UserID,
		CustomerName: order.CustomerName,
		TotalPrice:   order.TotalPrice.StringFixed(2),
		Items:        items,
		PlacedAt:     order.PlacedAt.UTC().Format(time.RFC3339),
	}
}
