package handler

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"outlinehub/internal/catalog"
	"outlinehub/internal/service"
	"outlinehub/internal/staging"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(
	app *fiber.App,
	capability staging.Capability,
	repo staging.Repository,
	cat *catalog.Catalog,
	pubSvc service.PublishService,
	outSvc service.OutlineService,
	searchLimit int,
	reg *prometheus.Registry,
) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	app.Get("/health", HealthCheck(capability))
	app.Get("/healthz", LivenessProbe())

	// Staging area: the local-first review flow
	app.Post("/staging/files", StageFile(repo))
	app.Get("/staging/files", ListStagedFiles(repo))
	app.Get("/staging/files/:id", GetStagedFile(repo))
	app.Put("/staging/files/:id", UpdateStagedFile(repo))
	app.Delete("/staging/files/:id", DeleteStagedFile(repo))
	app.Delete("/staging/files", ClearStagedFiles(repo))
	app.Post("/staging/publish", PublishStagedFiles(pubSvc))

	// Catalog search and published outline browsing
	app.Get("/courses/search", SearchCourses(cat, searchLimit))
	app.Get("/outlines/:major/:code", ListCourseOutlines(outSvc))
}

// HealthCheck reports service health and which staging mode is active.
func HealthCheck(capability staging.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := "durable"
		if !capability.Supported {
			mode = "metadata-only"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"staging": mode,
		})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// SearchCourses handles GET /courses/search?query=&limit=. The limit is
// capped at maxLimit.
func SearchCourses(cat *catalog.Catalog, maxLimit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("query")
		if query == "" {
			return writeError(c, fiber.StatusBadRequest, "QUERY_REQUIRED", "query is required")
		}
		limit, err := strconv.Atoi(c.Query("limit", "5"))
		if err != nil || limit < 1 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		return c.JSON(cat.Search(query, limit))
	}
}

// ListCourseOutlines handles GET /outlines/:major/:code.
func ListCourseOutlines(svc service.OutlineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		major := c.Params("major")
		code, err := url.PathUnescape(c.Params("code"))
		if err != nil || major == "" || code == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_COURSE", "invalid course path")
		}
		res, err := svc.ListCourse(c.UserContext(), major, code)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
