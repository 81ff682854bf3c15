package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/civicdesk/complaint-service/internal/api/http/handlers"
	"github.com/civicdesk/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Users      *handlers.UsersHandler
	Taxonomy   *handlers.TaxonomyHandler
	Complaints *handlers.ComplaintsHandler
	Metrics    *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	users := app.Group("/users")
	users.Post("/", cfg.Users.Register)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.UpdateProfile)
	users.Patch("/:id/role", cfg.Users.UpdateRole)

	departments := app.Group("/departments")
	departments.Post("/", cfg.Taxonomy.CreateDepartment)
	departments.Get("/", cfg.Taxonomy.ListDepartments)
	departments.Get("/:id", cfg.Taxonomy.GetDepartment)
	departments.Patch("/:id", cfg.Taxonomy.UpdateDepartment)

	issueTypes := app.Group("/issue-types")
	issueTypes.Post("/", cfg.Taxonomy.CreateIssueType)
	issueTypes.Get("/", cfg.Taxonomy.ListIssueTypes)
	issueTypes.Get("/:id", cfg.Taxonomy.GetIssueType)
	issueTypes.Patch("/:id", cfg.Taxonomy.UpdateIssueType)

	complaints := app.Group("/complaints")
	complaints.Post("/", cfg.Complaints.Submit)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id", cfg.Complaints.Update)
	complaints.Get("/:id/history", cfg.Complaints.History)
}
