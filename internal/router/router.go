package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/nft-exchange/internal/handler"    // handlers implementing the business logic
	"github.com/iliyamo/nft-exchange/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated session operations live under /v1/auth, while the
// protected /v1/me endpoint carries the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access issues a new
	// access token without rotating.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one session); no middleware needed.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("AUTHORITY", "TRADER"))
	auth.GET("/me", a.Me)
}

// RegisterRegistry registers the token registry endpoints.  Reads are
// public; minting requires the AUTHORITY role; approvals and transfers
// require any valid session.  The engine re-validates every caller
// regardless of routing, so the role middleware is a convenience, not
// the security boundary.
func RegisterRegistry(e *echo.Echo, t *handler.TokenHandler, jwtSecret string) {
	// Public token reads.
	e.GET("/v1/tokens/:id", t.Get)

	// Minting endpoints, authority only.
	mint := e.Group(
		"/v1/tokens",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("AUTHORITY"),
	)
	mint.POST("", t.Mint)
	mint.POST("/batch", t.BatchMint)
	mint.POST("/bulk", t.BulkMint)

	// Delegation and transfer endpoints for any authenticated caller.
	own := e.Group(
		"/v1/tokens",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("AUTHORITY", "TRADER"),
	)
	own.POST("/:id/approve", t.Approve)
	own.POST("/:id/transfer", t.Transfer)
	own.POST("/approvals", t.SetOperator)
}

// RegisterMarket registers the listing ledger endpoints.  Browsing is
// public (and may be wrapped in the response cache by the caller);
// create, purchase and cancel require a session.
func RegisterMarket(e *echo.Echo, l *handler.ListingHandler, jwtSecret string, public ...echo.MiddlewareFunc) {
	e.GET("/v1/listings", l.List, public...)
	e.GET("/v1/listings/count", l.Count, public...)
	e.GET("/v1/listings/:id", l.Get, public...)

	g := e.Group(
		"/v1/listings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("AUTHORITY", "TRADER"),
	)
	g.POST("", l.Create)
	g.POST("/:id/purchase", l.Purchase)
	g.POST("/:id/cancel", l.Cancel)
}

// RegisterWallet registers the balances endpoints: the caller's own
// balance, the deposit faucet and a public per-address balance query.
func RegisterWallet(e *echo.Echo, w *handler.WalletHandler, jwtSecret string) {
	e.GET("/v1/wallets/:address", w.BalanceOf)

	g := e.Group(
		"/v1/wallet",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("AUTHORITY", "TRADER"),
	)
	g.GET("", w.Balance)
	g.POST("/deposit", w.Deposit)
}
