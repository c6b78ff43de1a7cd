// Package startup wires the store, caches, services, and HTTP routes and
// runs the server.
package startup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gnomiproject/gnomiproject-go/api"
	"github.com/gnomiproject/gnomiproject-go/cache"
	"github.com/gnomiproject/gnomiproject-go/config"
	"github.com/gnomiproject/gnomiproject-go/email"
	"github.com/gnomiproject/gnomiproject-go/services"
	"github.com/gnomiproject/gnomiproject-go/store"
)

// Initialize builds the application and blocks serving HTTP.
func Initialize() error {
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	log.Printf("Database connected: %s", db.ConnectionInfo())

	if err := db.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("failed to ensure local schema: %w", err)
	}

	// Explicit cache manager, injected into services
	cacheManager := cache.NewManager()
	cache.StartCleanupRoutine(cacheManager)
	log.Println("Cache manager initialized")

	emailClient, err := email.NewClient()
	if err != nil {
		log.Printf("WARNING: email client unavailable (%v); dispatch will fail per-row until configured", err)
	}

	averageData := services.NewAverageDataService(db, cacheManager)
	calculator := services.NewPercentageCalculatorService(averageData)
	access := services.NewReportAccessService(db, cacheManager)
	payload := services.NewReportPayloadService(db, cacheManager)
	generator := services.NewReportGeneratorService(db)
	assessment := services.NewAssessmentService()

	var sender services.EmailSender = emailClient
	if emailClient == nil {
		sender = noopSender{}
	}
	dispatch := services.NewEmailDispatchService(db, sender)
	requests := services.NewReportRequestService(db, dispatch)

	ctx := context.Background()
	access.StartRevalidationLoop(ctx)
	dispatch.StartDispatchLoop(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.FilteredLogger())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			config.SiteOrigin,
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With",
		},
		AllowCredentials: true,
	}))

	// Authentication and system routes
	r.POST("/api/v1/auth/login", api.LoginHandler)
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": db.ConnectionInfo()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/archetypes", api.GetArchetypesHandler)
		v1.GET("/assessment/questions", api.GetQuestionsHandler)
		v1.POST("/assessment", api.SubmitAssessmentHandler(assessment))

		v1.POST("/report-requests", api.CreateReportRequestHandler(requests))
		v1.GET("/reports/:archetypeId/:token", api.GetReportHandler(access, payload))
		v1.GET("/reports/:archetypeId/:token/status", api.GetReportStatusHandler(access))
		v1.GET("/metrics/:archetypeId/:token", api.GetMetricsHandler(access, payload, calculator))

		admin := v1.Group("/admin")
		admin.Use(api.RequireAdmin())
		{
			admin.POST("/reports/generate", api.GenerateReportsHandler(generator, payload))
			admin.POST("/email/dispatch", api.DispatchEmailsHandler(dispatch))
			admin.GET("/requests", api.ListRequestsHandler(db))
		}
	}

	// Tracking pixel referenced from outbound emails
	r.GET("/functions/v1/track-access/:archetypeId/:token", api.TrackAccessHandler(db))

	log.Printf("Starting server on :%s", config.Port)
	return r.Run(":" + config.Port)
}

// noopSender stands in when RESEND_API_KEY is absent so the worker fails
// loudly per-row instead of at startup.
type noopSender struct{}

var errNoEmailClient = errors.New("email client is not configured")

func (noopSender) SendReportReady(email.ReportEmailProps) error {
	return errNoEmailClient
}

func (noopSender) SendTeamNotification(email.TeamNotificationProps) error {
	return errNoEmailClient
}
