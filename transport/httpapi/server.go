package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/AntonStoeckl/library-loans-go/features/identity"
	"github.com/AntonStoeckl/library-loans-go/features/inventory"
	"github.com/AntonStoeckl/library-loans-go/features/loans"
	"github.com/AntonStoeckl/library-loans-go/features/reports"
)

const basePath = "/api/v1"

// Services are the handlers' collaborators.
type Services struct {
	Identity  *identity.Service
	Inventory *inventory.Service
	Loans     *loans.Service
	Reports   *reports.Service
}

// NewServer builds an echo instance with middleware, serializer, validator and all routes.
func NewServer(services Services, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = requestValidator{}
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group(basePath)

	persons := personHandlers{identity: services.Identity}
	api.POST("/readers", persons.registerReader)
	api.GET("/readers", persons.listReaders)
	api.PUT("/readers/:id/status", persons.changeStatus)
	api.PUT("/readers/:id/zone", persons.changeZone)
	api.POST("/librarians", persons.registerLibrarian)
	api.GET("/librarians", persons.listLibrarians)
	api.GET("/persons/:id", persons.get)
	api.PUT("/persons/:id/credential", persons.changeCredential)
	api.POST("/credentials/verify", persons.verifyCredential)

	materials := materialHandlers{inventory: services.Inventory}
	api.POST("/materials/books", materials.addBook)
	api.POST("/materials/special-items", materials.addSpecialItem)
	api.GET("/materials", materials.find)
	api.GET("/materials/:id", materials.get)

	loanRoutes := loanHandlers{loans: services.Loans}
	api.POST("/loans", loanRoutes.request)
	api.GET("/loans/:id", loanRoutes.get)
	api.POST("/loans/:id/approve", loanRoutes.approve)
	api.POST("/loans/:id/cancel", loanRoutes.cancel)
	api.POST("/loans/:id/return", loanRoutes.returnLoan)
	api.PUT("/loans/:id/state", loanRoutes.changeState)
	api.GET("/loans/:id/overdue", loanRoutes.overdue)
	api.DELETE("/loans/:id", loanRoutes.delete)

	reportRoutes := reportHandlers{reports: services.Reports}
	api.GET("/reports/summary", reportRoutes.summary)
	api.GET("/reports/loans-by-state", reportRoutes.countByState)
	api.GET("/reports/overdue", reportRoutes.overdue)
	api.GET("/reports/materials", reportRoutes.materialLoanCounts)
	api.GET("/readers/:id/loans", reportRoutes.loansForReader)
	api.GET("/librarians/:id/loans", reportRoutes.loansForLibrarian)
	api.GET("/zones/:zone/loans", reportRoutes.loansForZone)
	api.GET("/materials/:id/pending-loans", reportRoutes.pendingLoansForMaterial)

	return e
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = StatusFor(err)
			}

			logger.InfoContext(c.Request().Context(), "http request",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	}
}
