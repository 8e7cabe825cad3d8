package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/ohse-platform/incident-backend/internal/config"
	"github.com/ohse-platform/incident-backend/internal/handlers"
	"github.com/ohse-platform/incident-backend/internal/middleware"
	"github.com/ohse-platform/incident-backend/internal/roles"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	caseHandler *handlers.CaseHandler,
	investigationHandler *handlers.InvestigationHandler,
	enquiryHandler *handlers.EnquiryHandler,
	referenceHandler *handlers.ReferenceHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)

	// Public safety directory and portal content
	api.Get("/reference/coordinators", referenceHandler.Coordinators)
	api.Get("/reference/floor-marshalls", referenceHandler.FloorMarshalls)
	api.Get("/reference/first-aiders", referenceHandler.FirstAiders)
	api.Get("/news", referenceHandler.News)
	api.Get("/faqs", referenceHandler.FAQs)
	api.Get("/user-guides", referenceHandler.UserGuides)

	// Incident cases (JWT required throughout; lifecycle transitions are
	// additionally role-gated)
	cases := api.Group("/cases", middleware.JWTProtected(cfg))
	cases.Post("/", caseHandler.Create)
	cases.Get("/", caseHandler.List)
	cases.Get("/:tracking_no", caseHandler.Get)
	cases.Post("/:tracking_no/attachments", caseHandler.AddAttachment)
	cases.Put("/:tracking_no/approve",
		middleware.RequireRole(roles.Approver), caseHandler.Approve)
	cases.Put("/:tracking_no/reject",
		middleware.RequireRole(roles.Approver), caseHandler.Reject)
	cases.Put("/:tracking_no/resubmit",
		middleware.RequireRole(roles.Reporter), caseHandler.Resubmit)
	cases.Put("/:tracking_no/close",
		middleware.RequireRole(roles.GOHSEManager), caseHandler.Close)

	cases.Get("/:tracking_no/investigation", investigationHandler.Get)
	cases.Put("/:tracking_no/investigation/open",
		middleware.RequireRole(roles.Investigator), investigationHandler.Open)
	cases.Put("/:tracking_no/investigation/submit",
		middleware.RequireRole(roles.Investigator), investigationHandler.Submit)
	cases.Put("/:tracking_no/investigation/approve",
		middleware.RequireRole(roles.GOHSEManager), investigationHandler.Approve)
	cases.Put("/:tracking_no/investigation/reject",
		middleware.RequireRole(roles.GOHSEManager), investigationHandler.Reject)
	cases.Put("/:tracking_no/investigation/resubmit",
		middleware.RequireRole(roles.Investigator), investigationHandler.Resubmit)

	investigations := api.Group("/investigations", middleware.JWTProtected(cfg))
	investigations.Post("/:id/comments", investigationHandler.AddComment)
	investigations.Post("/:id/attachments", investigationHandler.AddAttachment)

	// Enquiries
	enquiries := api.Group("/enquiries", middleware.JWTProtected(cfg))
	enquiries.Post("/", enquiryHandler.Create)
	enquiries.Get("/", enquiryHandler.List)
	enquiries.Get("/:enquiry_id", enquiryHandler.Get)
	enquiries.Put("/:enquiry_id/status",
		middleware.RequireRole(roles.GOHSETeam, roles.GOHSEManager), enquiryHandler.UpdateStatus)
	enquiries.Post("/:enquiry_id/comments", enquiryHandler.AddComment)
}
