package router

import (
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// APIHandlers holds the handlers mounted under the versioned API
type APIHandlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Invoices  *handler.InvoiceHandler
	Quotes    *handler.QuoteHandler
	Clients   *handler.ClientHandler
	Companies *handler.CompanyHandler
	Settings  *handler.SettingsHandler
	System    *handler.SystemHandler
}

// APIMiddleware is the per-group middleware of the API. Authenticate must
// populate the JWT context keys; RequireAdmin runs after it.
type APIMiddleware struct {
	Authenticate gin.HandlerFunc
	RequireAdmin gin.HandlerFunc
	LoginLimit   gin.HandlerFunc
}

// APIGroups builds the domain groups of the CRM API
func APIGroups(h APIHandlers, mw APIMiddleware) []*DomainGroup {
	authRoutes := NewDomainGroup("auth", "/auth")
	loginChain := []gin.HandlerFunc{h.Auth.Login}
	if mw.LoginLimit != nil {
		loginChain = append([]gin.HandlerFunc{mw.LoginLimit}, loginChain...)
	}
	authRoutes.POST("/login", loginChain...)
	authRoutes.POST("/refresh", h.Auth.Refresh)

	session := authRoutes.Group("session", "").Use(mw.Authenticate)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)
	session.PUT("/profile", h.Auth.UpdateProfile)
	session.PUT("/password", h.Auth.ChangePassword)

	users := authRoutes.Group("users", "/users").Use(mw.Authenticate, mw.RequireAdmin)
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.GET("/:id", h.Users.GetByID)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	invoices := NewDomainGroup("invoices", "/invoices").Use(mw.Authenticate)
	invoices.GET("", h.Invoices.List)
	invoices.GET("/stats/summary", h.Invoices.Stats)
	invoices.GET("/:id", h.Invoices.GetByID)
	invoices.POST("", h.Invoices.Create)
	invoices.PUT("/:id", h.Invoices.Update)
	invoices.DELETE("/:id", h.Invoices.Delete)
	invoices.PUT("/:id/send", h.Invoices.Send)
	invoices.PUT("/:id/cancel", h.Invoices.Cancel)
	invoices.PUT("/:id/mark-paid", h.Invoices.MarkPaid)

	quotes := NewDomainGroup("quotes", "/quotes").Use(mw.Authenticate)
	quotes.GET("", h.Quotes.List)
	quotes.GET("/stats/summary", h.Quotes.Stats)
	quotes.GET("/:id", h.Quotes.GetByID)
	quotes.POST("", h.Quotes.Create)
	quotes.PUT("/:id", h.Quotes.Update)
	quotes.DELETE("/:id", h.Quotes.Delete)
	quotes.PUT("/:id/send", h.Quotes.Send)
	quotes.PUT("/:id/accept", h.Quotes.Accept)
	quotes.PUT("/:id/reject", h.Quotes.Reject)
	quotes.POST("/:id/convert-to-invoice", h.Quotes.ConvertToInvoice)

	clients := NewDomainGroup("clients", "/clients").Use(mw.Authenticate)
	clients.GET("", h.Clients.List)
	clients.GET("/stats/summary", h.Clients.Stats)
	clients.GET("/:id", h.Clients.GetByID)
	clients.POST("", h.Clients.Create)
	clients.PUT("/:id", h.Clients.Update)
	clients.DELETE("/:id", h.Clients.Delete)

	companies := NewDomainGroup("companies", "/companies").Use(mw.Authenticate)
	companies.GET("", h.Companies.List)
	companies.GET("/stats/summary", h.Companies.Stats)
	companies.GET("/:id", h.Companies.GetByID)
	companies.GET("/:id/clients", h.Companies.Clients)
	companies.POST("", h.Companies.Create)
	companies.PUT("/:id", h.Companies.Update)
	companies.DELETE("/:id", h.Companies.Delete)

	settings := NewDomainGroup("settings", "/settings").Use(mw.Authenticate)
	settings.GET("/company", h.Settings.GetCompany)
	settings.PUT("/company", h.Settings.UpdateCompany)

	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/ping", h.System.Ping)

	return []*DomainGroup{authRoutes, invoices, quotes, clients, companies, settings, system}
}

// RegisterAPI mounts the CRM API on r and returns its route table
func RegisterAPI(r *Router, h APIHandlers, mw APIMiddleware) []Route {
	var routes []Route
	for _, g := range APIGroups(h, mw) {
		r.Register(g)
		routes = append(routes, g.Routes(r.BasePath())...)
	}
	return routes
}
