package main

import (
	"os"

	"github.com/clawboard/clawboard/internal/api/handlers"
	"github.com/clawboard/clawboard/internal/api/middleware"
	"github.com/clawboard/clawboard/internal/auth"
	"github.com/clawboard/clawboard/internal/config"
	"github.com/clawboard/clawboard/internal/database"
	"github.com/clawboard/clawboard/internal/store"
	"github.com/clawboard/clawboard/internal/ws"
	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize credentials and token signing
	creds := auth.NewCredentials(cfg.APIKey, cfg.APIKeyHash)
	jwtManager, err := auth.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		logger.Errorf("Failed to create JWT manager: %v", err)
		os.Exit(1)
	}
	verifier := auth.NewVerifier(creds, jwtManager)

	// Initialize realtime fan-out
	hub := ws.NewHub(ws.NewRegistry())
	wsServer := ws.NewServer(hub, verifier)

	boardStore := store.New(db.DB, nil)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// Root endpoint - returns plain text for client validation
	router.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to Clawboard!")
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(creds, jwtManager)
	taskHandler := handlers.NewTaskHandler(boardStore, hub)
	projectHandler := handlers.NewProjectHandler(boardStore, hub)
	documentHandler := handlers.NewDocumentHandler(boardStore, hub)
	activityHandler := handlers.NewActivityHandler(boardStore, hub)
	agentHandler := handlers.NewAgentHandler(hub)

	// Public routes (no auth required)
	v1 := router.Group("/v1")
	{
		v1.POST("/auth", authHandler.PostAuth)
	}

	// Protected routes (auth required)
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(verifier))
	{
		// Tasks
		protected.GET("/tasks", taskHandler.ListTasks)
		protected.POST("/tasks", taskHandler.CreateTask)
		protected.GET("/tasks/:id", taskHandler.GetTask)
		protected.PATCH("/tasks/:id", taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", taskHandler.DeleteTask)

		// Projects
		protected.GET("/projects", projectHandler.ListProjects)
		protected.POST("/projects", projectHandler.CreateProject)
		protected.PATCH("/projects/:id", projectHandler.UpdateProject)
		protected.DELETE("/projects/:id", projectHandler.DeleteProject)

		// Documents
		protected.GET("/documents", documentHandler.ListDocuments)
		protected.POST("/documents", documentHandler.CreateDocument)
		protected.GET("/documents/:id", documentHandler.GetDocument)
		protected.PUT("/documents/:id", documentHandler.UpdateDocument)

		// Activity log
		protected.GET("/activity", activityHandler.ListActivity)
		protected.POST("/activity", activityHandler.CreateActivity)

		// Agent presence webhooks
		protected.GET("/agents", agentHandler.ListAgents)
		protected.POST("/agents/events", agentHandler.PostAgentEvent)
	}

	// Realtime endpoint. Auth runs inside the handshake handler because the
	// credential arrives as a query parameter, not a header.
	router.GET("/ws", wsServer.HandleWebSocket)

	// Start HTTP server
	logger.Infof("Clawboard server starting on http://localhost%s", cfg.Addr)
	logger.Infof("Database: %s", cfg.DatabasePath)

	if err := router.Run(cfg.Addr); err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
