package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeekaaay/EventManagement/internal/booking"
	"github.com/Deeekaaay/EventManagement/internal/clock"
	"github.com/Deeekaaay/EventManagement/internal/model"
	"github.com/Deeekaaay/EventManagement/internal/repository"
)

func newCartContext(t *testing.T, method, target string, userID any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestGetCartUnauthorized(t *testing.T) {
	h := &BookingHandler{Carts: booking.NewCartStore()}

	c, rec := newCartContext(t, http.MethodGet, "/v1/cart", nil)
	require.NoError(t, h.GetCart(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCartReturnsSubtotals(t *testing.T) {
	carts := booking.NewCartStore()
	ev := model.Event{
		ID:         1,
		Title:      "Jazz Night",
		Venue:      "Main Hall",
		Day:        model.Fri,
		Price:      decimal.RequireFromString("25.50"),
		TotalSeats: 100,
		Enabled:    true,
	}
	require.NoError(t, carts.Get(7).Add(ev, 3))

	h := &BookingHandler{Carts: carts}
	// JWT claims decode numeric ids as float64.
	c, rec := newCartContext(t, http.MethodGet, "/v1/cart", float64(7))
	require.NoError(t, h.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []cartItemResp `json:"items"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "76.50", body.Items[0].Subtotal)
	assert.Equal(t, 3, body.Items[0].Quantity)
}

func TestRemoveCartItem(t *testing.T) {
	carts := booking.NewCartStore()
	ev := model.Event{ID: 5, Title: "A", Day: model.Sat, Price: decimal.New(10, 0), TotalSeats: 10, Enabled: true}
	require.NoError(t, carts.Get(1).Add(ev, 2))

	h := &BookingHandler{Carts: carts}
	c, rec := newCartContext(t, http.MethodDelete, "/v1/cart/items/5", float64(1))
	c.SetParamNames("eventId")
	c.SetParamValues("5")

	require.NoError(t, h.RemoveCartItem(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, carts.Get(1).Len())
}

func TestClearCart(t *testing.T) {
	carts := booking.NewCartStore()
	ev := model.Event{ID: 5, Title: "A", Day: model.Sat, Price: decimal.New(10, 0), TotalSeats: 10, Enabled: true}
	require.NoError(t, carts.Get(1).Add(ev, 2))

	h := &BookingHandler{Carts: carts}
	c, rec := newCartContext(t, http.MethodDelete, "/v1/cart", float64(1))

	require.NoError(t, h.ClearCart(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, carts.Get(1).Len())
}

func TestGetUserIDShapes(t *testing.T) {
	for _, v := range []any{uint64(9), int(9), int64(9), float64(9), "9"} {
		c, _ := newCartContext(t, http.MethodGet, "/", v)
		got, err := getUserID(c)
		require.NoError(t, err)
		assert.Equal(t, uint64(9), got)
	}

	c, _ := newCartContext(t, http.MethodGet, "/", "not-a-number")
	_, err := getUserID(c)
	assert.Error(t, err)
}

type stubCatalog struct{ ev model.Event }

func (s stubCatalog) GetEvent(_ context.Context, _ uint64) (*model.Event, error) {
	cp := s.ev
	return &cp, nil
}

type stubLedger struct{ err error }

func (s stubLedger) Commit(_ context.Context, _ model.Order) (model.Order, error) {
	return model.Order{}, s.err
}

func newCheckoutHandler(t *testing.T, ledgerErr error) *BookingHandler {
	t.Helper()
	ev := model.Event{
		ID:         1,
		Title:      "Jazz Night",
		Venue:      "Main Hall",
		Day:        model.Sun,
		Price:      decimal.RequireFromString("10.00"),
		TotalSeats: 100,
		Enabled:    true,
	}
	carts := booking.NewCartStore()
	require.NoError(t, carts.Get(7).Add(ev, 1))
	engine := booking.NewEngine(stubCatalog{ev: ev}, stubLedger{err: ledgerErr}, clock.NewSystem())
	return &BookingHandler{Carts: carts, Engine: engine}
}

func postCheckout(t *testing.T, h *BookingHandler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(`{"confirmation_code":"123456"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", float64(7))
	require.NoError(t, h.Checkout(c))
	return rec
}

func TestCheckoutCommitConflictVersusFailure(t *testing.T) {
	// Losing the race for the last seats is a 409 the client retries with
	// a fresh cart; a broken database during commit is a 500.
	seats := newCheckoutHandler(t, fmt.Errorf("event 1: %w", repository.ErrInsufficientSeats))
	rec := postCheckout(t, seats)
	assert.Equal(t, http.StatusConflict, rec.Code)

	infra := newCheckoutHandler(t, errors.New("driver: bad connection"))
	rec = postCheckout(t, infra)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// Either way the cart survives for another attempt.
	assert.Equal(t, 1, seats.Carts.Get(7).Len())
	assert.Equal(t, 1, infra.Carts.Get(7).Len())
}

func TestFormatOrdersText(t *testing.T) {
	placed := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	orders := []model.Order{
		{
			Number:     "0002",
			PlacedAt:   placed,
			TotalPrice: decimal.RequireFromString("51.00"),
			Items: []model.OrderItem{
				{EventID: 1, Title: "Jazz Night", Venue: "Main Hall", Day: model.Fri, Quantity: 2, PricePerTicket: decimal.RequireFromString("25.50")},
			},
		},
		{
			Number:     "0001",
			PlacedAt:   placed.Add(-time.Hour),
			TotalPrice: decimal.RequireFromString("18.00"),
			Items: []model.OrderItem{
				{EventID: 2, Title: "Comedy", Venue: "Club", Day: model.Sat, Quantity: 1, PricePerTicket: decimal.RequireFromString("18.00")},
			},
		},
	}

	text := FormatOrdersText(orders)

	assert.Contains(t, text, "Order 0002 placed at 2026-09-02 14:30:00")
	assert.Contains(t, text, "2 x Jazz Night (Main Hall, Fri) @ 25.50")
	assert.Contains(t, text, "Total: 51.00")
	assert.Contains(t, text, "Order 0001")

	assert.Empty(t, FormatOrdersText(nil))
}
