package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"idea-market/internal/auth"
	"idea-market/internal/blockchain"
	"idea-market/internal/config"
	"idea-market/internal/database"
	"idea-market/internal/handlers"
	"idea-market/internal/repository"
	"idea-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Solana client (treasury wallet from env)
	solanaClient, err := blockchain.NewSolanaClient(
		cfg.Solana.Network,
		cfg.Solana.RPCURL,
		cfg.Solana.USDCMintAddress,
		cfg.Solana.TreasuryPrivateKey,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Solana client: %v", err)
	}

	// Initialize repository and services
	repo := repository.NewRepository(database.GetDB())
	userService := services.NewUserService(repo)
	authService := services.NewAuthService(repo, userService)
	ideaService := services.NewIdeaService(repo, solanaClient)
	feedbackService := services.NewFeedbackService(repo)
	payoutService := services.NewPayoutService(repo, solanaClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	ideaHandler := handlers.NewIdeaHandler(ideaService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	userHandler := handlers.NewUserHandler(userService, solanaClient)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/challenge", authHandler.IssueChallenge)
		authRoutes.POST("/wallet", authHandler.WalletLogin)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public routes
	router.GET("/api/ideas", ideaHandler.ListIdeas)
	router.GET("/api/ideas/:id", ideaHandler.GetIdea)
	router.GET("/api/users/:wallet", userHandler.GetProfile)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Idea endpoints
		api.POST("/ideas", ideaHandler.CreateIdea)
		api.POST("/ideas/:id/payment-tx", ideaHandler.BuildPaymentTx)
		api.POST("/ideas/:id/confirm-payment", ideaHandler.ConfirmPayment)
		api.GET("/ideas/:id/activity", ideaHandler.GetActivity)

		// Feedback endpoints
		api.POST("/ideas/:id/feedback", feedbackHandler.SubmitFeedback)
		api.POST("/feedback/:id/accept", feedbackHandler.AcceptFeedback)
		api.POST("/feedback/:id/shortlist", feedbackHandler.ShortlistFeedback)
		api.POST("/feedback/:id/reject", feedbackHandler.RejectFeedback)

		// Payout endpoints
		api.GET("/payouts/:id", payoutHandler.GetPayout)
		api.POST("/payouts/:id/send", payoutHandler.SendPayout)

		// Wallet diagnostics
		api.GET("/wallet/balance", userHandler.GetWalletBalance)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
