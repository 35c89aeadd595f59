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

	"github.com/doulacrm/backend/internal/application/services"
	"github.com/doulacrm/backend/internal/bootstrap"
	"github.com/doulacrm/backend/internal/infrastructure/database"
	"github.com/doulacrm/backend/internal/interfaces/middleware"
	"github.com/doulacrm/backend/internal/interfaces/rest"
	"github.com/doulacrm/backend/pkg/constants"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	if err := bootstrap.InitializeSystemData(db); err != nil {
		log.Fatalf("Failed to initialize system data: %v", err)
	}

	svcMgr := services.NewServiceManager(db)
	log.Println("🔧 Service manager initialized")

	if err := bootstrap.InitializeStandardObjects(svcMgr.Metadata); err != nil {
		log.Fatalf("Failed to initialize standard objects: %v", err)
	}

	// Warm the metadata cache before accepting requests
	if err := svcMgr.Metadata.RefreshOrg(context.Background(), constants.DefaultOrgID); err != nil {
		log.Printf("⚠️  Warning: failed to warm metadata cache: %v", err)
	} else {
		log.Println("📦 Metadata cache loaded")
	}

	router := gin.Default()
	router.Use(middleware.Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	registerRoutes(router, svcMgr)

	if err := svcMgr.Start(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}

	log.Println("🚀 DoulaCRM Metadata Backend Started")
	log.Printf("📍 Server:       http://localhost:%s", port)
	log.Printf("🔐 Auth API:     http://localhost:%s/api/auth", port)
	log.Printf("📊 Metadata API: http://localhost:%s/api/metadata", port)
	log.Printf("💚 Health check: http://localhost:%s/health", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.Stop()
	log.Println("🛑 Background jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}

func registerRoutes(router *gin.Engine, svcMgr *services.ServiceManager) {
	authHandler := rest.NewAuthHandler(svcMgr)
	metadataHandler := rest.NewMetadataHandler(svcMgr)
	fieldHandler := rest.NewFieldHandler(svcMgr)
	picklistHandler := rest.NewPicklistHandler(svcMgr)
	permissionHandler := rest.NewPermissionHandler(svcMgr)
	auditHandler := rest.NewAuditHandler(svcMgr)

	requireAuth := middleware.RequireAuth()
	requireSystemAdmin := middleware.RequireSystemAdmin()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetMe)
		}

		metadata := api.Group("/metadata")
		metadata.Use(requireAuth)
		{
			metadata.GET("/field-types", metadataHandler.GetFieldTypes)

			objects := metadata.Group("/objects")
			{
				objects.GET("", metadataHandler.ListObjects)
				objects.POST("", requireSystemAdmin, metadataHandler.CreateObject)
				objects.GET("/:api_name", metadataHandler.GetObject)
				objects.PATCH("/:api_name", requireSystemAdmin, metadataHandler.UpdateObject)
				objects.POST("/:api_name/deactivate", requireSystemAdmin, metadataHandler.DeactivateObject)
				objects.POST("/:api_name/reactivate", requireSystemAdmin, metadataHandler.ReactivateObject)

				objects.POST("/:api_name/fields", requireSystemAdmin, fieldHandler.CreateField)
				objects.PATCH("/:api_name/fields/:field_api_name", requireSystemAdmin, fieldHandler.UpdateField)
				objects.POST("/:api_name/fields/:field_api_name/deactivate", requireSystemAdmin, fieldHandler.DeactivateField)
				objects.POST("/:api_name/fields/:field_api_name/reactivate", requireSystemAdmin, fieldHandler.ReactivateField)

				objects.POST("/:api_name/fields/:field_api_name/picklist-values", requireSystemAdmin, picklistHandler.AddValue)
				objects.PATCH("/:api_name/fields/:field_api_name/picklist-values/:value_id", requireSystemAdmin, picklistHandler.UpdateValue)
				objects.POST("/:api_name/fields/:field_api_name/picklist-values/:value_id/default", requireSystemAdmin, picklistHandler.SetDefault)
				objects.DELETE("/:api_name/fields/:field_api_name/picklist-values/:value_id", requireSystemAdmin, picklistHandler.RemoveValue)

				objects.GET("/:api_name/permissions/:profile_id", permissionHandler.GetMatrix)
				objects.PUT("/:api_name/permissions/:profile_id", requireSystemAdmin, permissionHandler.SetPermission)
				objects.PUT("/:api_name/permissions/:profile_id/bulk", requireSystemAdmin, permissionHandler.SetBulk)
			}
		}

		audit := api.Group("/audit")
		audit.Use(requireAuth)
		{
			audit.GET("", auditHandler.List)
		}
	}
}
