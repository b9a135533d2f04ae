package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"invoiceflow/controllers"
	"invoiceflow/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, withMetrics bool) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if withMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// Customers
	protected.Post("/customer", controllers.CreateCustomer)
	protected.Get("/customers", controllers.GetCustomers)
	protected.Get("/customer/:id", controllers.GetCustomer)
	protected.Put("/customer/:id", controllers.UpdateCustomer)

	// Suppliers
	protected.Post("/supplier", controllers.CreateSupplier)
	protected.Get("/suppliers", controllers.GetSuppliers)
	protected.Get("/supplier/:id", controllers.GetSupplier)
	protected.Put("/supplier/:id", controllers.UpdateSupplier)

	// Products
	protected.Post("/products", controllers.CreateProducts) // batch create
	protected.Get("/products", controllers.GetProducts)
	protected.Get("/products/:id", controllers.GetProduct)
	protected.Put("/products/:id", controllers.UpdateProduct)

	// Schemes
	protected.Post("/schemes", controllers.CreateScheme)
	protected.Get("/schemes", controllers.GetSchemes)
	protected.Put("/schemes/:id", controllers.UpdateScheme)

	// Invoices (versioned, with payments)
	protected.Post("/invoice/preview", controllers.PreviewInvoice)
	protected.Post("/invoice", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoice/:id", controllers.GetInvoice)
	protected.Put("/invoices/:id", controllers.UpdateInvoice)
	protected.Put("/invoices/:id/status", controllers.UpdateInvoiceStatus)
	protected.Get("/invoices/:id/versions", controllers.GetInvoiceVersions)
	protected.Post("/invoices/:id/payments", controllers.CreatePayment)
	protected.Get("/invoices/:id/payments", controllers.ListPayments)

	// Documents and accounting
	protected.Get("/invoices/:id/documents/:type", controllers.GetInvoiceDocument)
	protected.Post("/invoices/:id/sync", controllers.SyncInvoice)
}
