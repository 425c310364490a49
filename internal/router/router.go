package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Deeekaaay/EventManagement/internal/handler"    // import the handlers that implement business logic
	"github.com/Deeekaaay/EventManagement/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/Deeekaaay/EventManagement/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check used by load balancers and the
// Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
	// Expose the default Prometheus registry.  The promhttp handler is a
	// plain http.Handler, so it is wrapped for Echo.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Route group under the /v1/auth prefix for operations that do not
	// require an existing session.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)

	// Group for routes that require a valid access token.  All handlers
	// registered on this group will execute the JWTAuth middleware before
	// being invoked.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Both customers and administrators may use the account endpoints.
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)
	// Password changes verify the current password inside the handler.
	auth.POST("/auth/change-password", a.ChangePassword)
	// Logout discards the caller's server-side cart; access tokens are
	// stateless and simply expire.
	auth.POST("/logout", a.Logout)
}

// RegisterCatalog registers the public event browsing endpoints and the
// administrative catalog and order endpoints under /v1/admin.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string) {
	// Browsing the catalog requires no authentication.
	e.GET("/v1/events", h.ListEvents)
	e.GET("/v1/events/:id", h.GetEvent)

	// Administration requires a valid token carrying the ADMIN role.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	// Event management: list (including disabled), create, update, delete
	// and toggle visibility.
	admin.GET("/events", h.ListAllEvents)
	admin.POST("/events", h.CreateEvent)
	admin.PUT("/events/:id", h.UpdateEvent)
	admin.DELETE("/events/:id", h.DeleteEvent)
	admin.PATCH("/events/:id/enabled", h.SetEventEnabled)
	// Every committed order in the system, newest first.
	admin.GET("/orders", h.ListAllOrders)
}

// RegisterBooking registers the cart and checkout endpoints.  All of them
// require an authenticated user; administrators may also book.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

	// Cart manipulation.  Carts live in memory per user and are re-validated
	// against the live catalog at checkout.
	g.GET("/cart", h.GetCart)
	g.POST("/cart/items", h.AddToCart)
	g.PUT("/cart/items/:eventId", h.UpdateCartItem)
	g.DELETE("/cart/items/:eventId", h.RemoveCartItem)
	g.DELETE("/cart", h.ClearCart)

	// Checkout and order history.
	g.POST("/checkout", h.Checkout)
	g.GET("/my-orders", h.MyOrders)
	g.GET("/my-orders/export", h.ExportMyOrders)
}
