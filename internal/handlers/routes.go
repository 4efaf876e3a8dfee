package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/config"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/messaging"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type Deps struct {
	Config    config.Config
	Store     store.Store
	Guard     *auth.Guard
	Engine    *workflow.Engine
	Notify    *notify.Service
	Messages  *messaging.Service
	Hub       *realtime.Hub
	AccessLog bool
}

// NewApp builds the Fiber app with every route mounted.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		AppName:      "partner-market",
	})

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: d.Config.CORSOrigins != "*",
	}))

	Register(app, d)
	return app
}

func Register(app *fiber.App, d Deps) {
	requireAuth := middleware.RequireAuth(d.Guard)
	optionalAuth := middleware.OptionalAuth(d.Guard)
	clientOnly := middleware.RequireRoles(models.RoleClient)
	partnerOnly := middleware.RequireRoles(models.RolePartner)

	authH := &AuthHandler{
		Store:     d.Store,
		JWTSecret: d.Config.JWTSecret,
		Expires:   d.Config.JWTExpiresMin,
	}
	projectH := NewProjectHandler(d.Engine)
	proposalH := NewProposalHandler(d.Engine)
	contractH := NewContractHandler(d.Engine)
	reviewH := NewReviewHandler(d.Engine)
	partnerH := NewPartnerHandler(d.Engine)
	notifH := NewNotificationHandler(d.Notify)
	msgH := NewMessageHandler(d.Messages)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})

	api := app.Group("/api")

	// auth
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/me", requireAuth, authH.Me)
	api.Put("/auth/me", requireAuth, authH.UpdateMe)
	api.Put("/auth/change-password", requireAuth, authH.ChangePassword)
	if d.Config.GoogleEnabled() {
		googleH := &GoogleOAuthHandler{
			Store:           d.Store,
			JWTSecret:       d.Config.JWTSecret,
			Expires:         d.Config.JWTExpiresMin,
			GoogleClientID:  d.Config.GoogleClientID,
			GoogleSecret:    d.Config.GoogleSecret,
			GoogleRedirect:  d.Config.GoogleRedirect,
			FrontendBaseURL: d.Config.FrontendBaseURL,
		}
		api.Get("/auth/google/start", googleH.GoogleStart)
		api.Get("/auth/google/callback", googleH.GoogleCallback)
	}

	// projects
	projects := api.Group("/projects")
	projects.Get("/", optionalAuth, projectH.List)
	projects.Get("/my", requireAuth, clientOnly, projectH.Mine)
	projects.Get("/:id", optionalAuth, projectH.Get)
	projects.Post("/", requireAuth, clientOnly, projectH.Create)
	projects.Put("/:id", requireAuth, clientOnly, projectH.Update)
	projects.Post("/:id/publish", requireAuth, clientOnly, projectH.Publish)
	projects.Post("/:id/cancel", requireAuth, clientOnly, projectH.Cancel)
	projects.Delete("/:id", requireAuth, clientOnly, projectH.Delete)

	// proposals
	proposals := api.Group("/proposals", requireAuth)
	proposals.Post("/", partnerOnly, proposalH.Create)
	proposals.Get("/my", partnerOnly, proposalH.Mine)
	proposals.Get("/project/:projectId", clientOnly, proposalH.ByProject)
	proposals.Get("/:id", proposalH.Get)
	proposals.Put("/:id/status", clientOnly, proposalH.UpdateStatus)
	proposals.Put("/:id", partnerOnly, proposalH.Update)
	proposals.Post("/:id/withdraw", partnerOnly, proposalH.Withdraw)

	// contracts
	contracts := api.Group("/contracts", requireAuth)
	contracts.Post("/", clientOnly, contractH.Create)
	contracts.Get("/", contractH.List)
	contracts.Get("/:id", contractH.Get)
	contracts.Put("/:id/status", contractH.UpdateStatus)
	contracts.Put("/:id", clientOnly, contractH.Update)

	// reviews
	api.Get("/reviews/user/:userId", reviewH.ByUser)
	api.Get("/reviews/contract/:contractId", reviewH.ByContract)
	api.Post("/reviews", requireAuth, reviewH.Create)
	api.Put("/reviews/:id", requireAuth, reviewH.Update)
	api.Delete("/reviews/:id", requireAuth, reviewH.Delete)

	// partners
	api.Get("/partners", partnerH.List)
	api.Get("/partners/profile/me", requireAuth, partnerOnly, partnerH.Me)
	api.Post("/partners/profile", requireAuth, partnerOnly, partnerH.Upsert)
	api.Get("/partners/:id", partnerH.Get)

	// notifications
	notifs := api.Group("/notifications", requireAuth)
	notifs.Get("/", notifH.List)
	notifs.Get("/unread-count", notifH.UnreadCount)
	notifs.Put("/mark-all-read", notifH.MarkAllRead)
	notifs.Put("/:id/read", notifH.MarkRead)
	notifs.Delete("/", notifH.DeleteAll)
	notifs.Delete("/:id", notifH.Delete)

	// messages
	msgs := api.Group("/messages", requireAuth)
	msgs.Post("/", msgH.Send)
	msgs.Get("/", msgH.List)
	msgs.Get("/conversations", msgH.Conversations)
	msgs.Get("/unread-count", msgH.UnreadCount)
	msgs.Put("/conversations/:userId/read", msgH.MarkConversationRead)
	msgs.Put("/:id/read", msgH.MarkRead)

	NewDashboardHandler(d.Engine).Routes(api, requireAuth)

	// websocket: auth via ?token= query param; carries notification and message frames
	if d.Hub != nil {
		wsH := NewWSHandler(d.Guard, d.Hub)
		app.Get("/ws/notifications", wsH.Upgrade, websocket.New(wsH.Serve))
	}
}
