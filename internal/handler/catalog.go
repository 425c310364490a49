package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Deeekaaay/EventManagement/internal/model"
	"github.com/Deeekaaay/EventManagement/internal/repository"
)

// CatalogHandler exposes the event catalog: public browsing plus the
// admin management surface (create, update, delete, enable/disable) and
// the admin order listing.  Reads go through the cached repository;
// every write invalidates the affected cache entries.
type CatalogHandler struct {
	Events *repository.CachedEventRepo
	Orders *repository.OrderRepo
}

func NewCatalogHandler(events *repository.CachedEventRepo, orders *repository.OrderRepo) *CatalogHandler {
	if events == nil || orders == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Events: events, Orders: orders}
}

type eventReq struct {
	Title      string          `json:"title"`
	Venue      string          `json:"venue"`
	Day        string          `json:"day"`
	Price      decimal.Decimal `json:"price"`
	TotalSeats int             `json:"total_seats"`
	Enabled    *bool           `json:"enabled"`
}

func (r *eventReq) validate() (model.Weekday, error) {
	if r.Title == "" || r.Venue == "" {
		return "", errors.New("title and venue are required")
	}
	day, err := model.ParseWeekday(r.Day)
	if err != nil {
		return "", err
	}
	if r.Price.IsNegative() {
		return "", errors.New("price must be non-negative")
	}
	if r.TotalSeats < 0 {
		return "", errors.New("total_seats must be non-negative")
	}
	return day, nil
}

// ListEvents handles GET /v1/events.  It returns enabled listings only;
// the admin variant at /v1/admin/events includes disabled ones.
func (h *CatalogHandler) ListEvents(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// ListAllEvents handles GET /v1/admin/events, including disabled listings.
func (h *CatalogHandler) ListAllEvents(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// GetEvent handles GET /v1/events/:id.
func (h *CatalogHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetEvent(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	if ev == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": ev})
}

// CreateEvent handles POST /v1/admin/events.  New listings start with
// zero tickets sold.
func (h *CatalogHandler) CreateEvent(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	day, err := req.validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	ev := model.Event{
		Title:      req.Title,
		Venue:      req.Venue,
		Day:        day,
		Price:      req.Price,
		TotalSeats: req.TotalSeats,
		Enabled:    enabled,
	}
	if err := h.Events.Create(c.Request().Context(), &ev); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "an event with this title, venue and day already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": ev})
}

// UpdateEvent handles PUT /v1/admin/events/:id.  The sold count is
// never taken from the request: the repository reads it under a row
// lock inside the update transaction, so a checkout committing at the
// same moment keeps its seats, and shrinking total_seats below the
// tickets already sold is rejected to keep 0 <= sold <= total.
func (h *CatalogHandler) UpdateEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	day, err := req.validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	existing, err := h.Events.GetEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	if existing == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}

	ev := model.Event{
		ID:         id,
		Title:      req.Title,
		Venue:      req.Venue,
		Day:        day,
		Price:      req.Price,
		TotalSeats: req.TotalSeats,
		Enabled:    existing.Enabled,
	}
	if req.Enabled != nil {
		ev.Enabled = *req.Enabled
	}
	if err := h.Events.Update(ctx, ev); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEvent):
			return c.JSON(http.StatusConflict, echo.Map{"error": "an event with this title, venue and day already exists"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrCapacityBelowSold):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats cannot be lower than tickets already sold"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update event"})
		}
	}
	updated, err := h.Events.GetEvent(ctx, id)
	if err != nil || updated == nil {
		return c.JSON(http.StatusOK, echo.Map{"item": ev})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": updated})
}

// DeleteEvent handles DELETE /v1/admin/events/:id.  Order history keeps
// its own snapshots, so deleting a listing never rewrites past orders.
func (h *CatalogHandler) DeleteEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete event"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SetEventEnabled handles PATCH /v1/admin/events/:id/enabled.
func (h *CatalogHandler) SetEventEnabled(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.Bind(&body); err != nil || body.Enabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enabled is required"})
	}
	if err := h.Events.SetEnabled(c.Request().Context(), id, *body.Enabled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update event"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAllOrders handles GET /v1/admin/orders: every committed order,
// newest first, attributed by username.
func (h *CatalogHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.Orders.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}
