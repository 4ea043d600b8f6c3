package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/skate-ticket-service/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/skate-ticket-service/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that carry no authentication and no rate
// limiting.  Currently it exposes only a health check, used by load
// balancers and monitoring systems to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations (login and the refresh flows) live under /v1/auth; logout and
// the profile endpoint require a valid access token.  There is no register
// endpoint: accounts are created by accepting an invitation.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new access
	// token while reusing the existing refresh token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the customer-facing endpoints.  None of them
// require authentication: a ticket code is the customer's only credential.
// The rate limiter shields intake and the webhook from abuse; pass an
// identity middleware from NewTokenBucket, or nil to disable.
func RegisterPublic(e *echo.Echo, t *handler.TicketHandler, p *handler.PaymentHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if limiter != nil {
		g.Use(limiter)
	}

	// Ticket intake and status.
	g.POST("/tickets", t.Create)
	g.GET("/tickets/:code", t.Get)
	// Customer confirmation for zero-price tickets.
	g.POST("/tickets/:code/confirm", t.ConfirmFree)
	// Post-completion feedback.
	g.POST("/tickets/:code/feedback", t.SubmitFeedback)
	g.GET("/tickets/:code/feedback", t.GetFeedback)

	// Payment signals: the provider's signed webhook (push) and the
	// customer's browser returning from the payment page (pull).
	g.POST("/payments/webhook", p.Webhook)
	g.GET("/tickets/:code/return", p.Return)
}

// RegisterSharpener registers the staff endpoints under /v1/sharpener.
// Every route requires a valid JWT carrying the SHARPENER role.
func RegisterSharpener(e *echo.Echo, s *handler.SharpenerHandler, inv *handler.InvitationHandler, jwtSecret string) {
	g := e.Group(
		"/v1/sharpener",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleSharpener),
	)

	g.GET("/dashboard", s.Dashboard)
	g.GET("/tickets", s.Queue)

	// Lifecycle transitions.  Each is a conditional update; a lost race
	// returns 409 and the client refreshes its queue.
	g.POST("/tickets/:id/claim", s.Claim)
	g.POST("/tickets/:id/promote", s.Promote)
	g.POST("/tickets/:id/unclaim", s.Unclaim)
	g.POST("/tickets/:id/complete", s.Complete)
	g.POST("/tickets/:id/cancel", s.Cancel)

	// Onboarding: issuing invitations is staff-only; accepting one cannot
	// require a token because the invitee has no account yet.
	g.POST("/invitations", inv.Create)
	e.POST("/v1/invitations/:token/accept", inv.Accept)
}
