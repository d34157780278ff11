package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ticketdesk/backend/internal/application/services"
	"github.com/ticketdesk/backend/internal/infrastructure/database"
	"github.com/ticketdesk/backend/internal/interfaces/middleware"
	"github.com/ticketdesk/backend/internal/interfaces/rest"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("📦 Loaded environment from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3002"
	}

	conn, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	svcMgr, err := services.NewServiceManager(conn.DB())
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	log.Println("🔧 Service manager initialized")

	go svcMgr.Scheduler.Start()

	router := gin.Default()
	router.Use(middleware.Cors())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	// Initialize handlers
	authHandler := rest.NewAuthHandler(svcMgr)
	fieldDefHandler := rest.NewFieldDefHandler(svcMgr)
	fieldValueHandler := rest.NewFieldValueHandler(svcMgr)
	ruleHandler := rest.NewRuleHandler(svcMgr)

	// Initialize middleware
	requireAuth := middleware.RequireAuth(svcMgr.Auth)
	requireAdmin := middleware.RequireAdmin()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		metadata := api.Group("/metadata")
		metadata.Use(requireAuth)
		{
			metadata.GET("/fieldtypes", fieldDefHandler.GetFieldTypes)
			metadata.GET("/custom-fields", fieldDefHandler.ListFields)
			metadata.GET("/custom-fields/:id", fieldDefHandler.GetField)
			metadata.POST("/custom-fields", requireAdmin, fieldDefHandler.CreateField)
			metadata.PATCH("/custom-fields/:id", requireAdmin, fieldDefHandler.UpdateField)
			metadata.DELETE("/custom-fields/:id", requireAdmin, fieldDefHandler.DeleteField)
		}

		tickets := api.Group("/tickets")
		tickets.Use(requireAuth)
		{
			tickets.GET("/:id/custom-fields", fieldValueHandler.GetTicketFields)
			tickets.GET("/:id/custom-fields/rendered", fieldValueHandler.GetRenderedFields)
			tickets.POST("/:id/custom-values", fieldValueHandler.SaveTicketValues)
		}

		rules := api.Group("/rules")
		rules.Use(requireAuth)
		{
			rules.GET("", ruleHandler.ListRules)
			rules.GET("/:id", ruleHandler.GetRule)
			rules.POST("", requireAdmin, ruleHandler.CreateRule)
			rules.PUT("/:id", requireAdmin, ruleHandler.UpdateRule)
			rules.PATCH("/:id/active", requireAdmin, ruleHandler.SetRuleActive)
			rules.DELETE("/:id", requireAdmin, ruleHandler.DeleteRule)
		}
	}

	log.Printf("\n📍 Server:        http://localhost:%s", port)
	log.Printf("🔐 Auth API:      http://localhost:%s/api/auth", port)
	log.Printf("📊 Metadata API:  http://localhost:%s/api/metadata", port)
	log.Printf("⚙️ Rules API:     http://localhost:%s/api/rules", port)
	log.Printf("💚 Health check:  http://localhost:%s/health\n", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.Scheduler.Stop()
	log.Println("🛑 Scheduler stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	if err := conn.Close(); err != nil {
		log.Printf("⚠️ Failed to close database: %v", err)
	}

	log.Println("Server exiting")
}
