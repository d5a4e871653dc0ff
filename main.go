package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dynetap-go/handlers"
	"dynetap-go/models"
	"dynetap-go/yoco"
)

func main() {

	/* DATABASE SETUP STARTS */

	err := godotenv.Load()
	if err != nil {
		log.Printf("Error loading .env file. Using environment variables.")
	}

	var db *gorm.DB
	var openDbErr error
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, openDbErr = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	} else {
		dbPath := "dynetap.db"
		log.Println("Warning: DATABASE_URL not set. Using local sqlite file: " + dbPath)
		db, openDbErr = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}
	if openDbErr != nil {
		log.Fatalf("Failed to connect to database: %v", openDbErr)
	}
	handlers.DB = db

	migrateErr := db.AutoMigrate(
		&models.User{}, &models.Menu{}, &models.Category{}, &models.Dish{},
		&models.Order{}, &models.OrderItem{},
	)
	if migrateErr != nil {
		log.Fatalf("Failed to migrate database: %v", migrateErr)
	}
	/* DATABASE SETUP ENDS */

	/* PAYMENTS SETUP STARTS */

	yocoSecretKey := os.Getenv("YOCO_SECRET_KEY")
	if yocoSecretKey == "" {
		log.Println("Warning: YOCO_SECRET_KEY not set. Checkout initiation will fail.")
	}
	handlers.Yoco = yoco.NewClient(yocoSecretKey)

	handlers.WebhookSecret = os.Getenv("YOCO_WEBHOOK_SECRET")
	if handlers.WebhookSecret == "" {
		log.Println("Warning: YOCO_WEBHOOK_SECRET not set. Webhook deliveries will be rejected.")
	}

	handlers.AppBaseURL = os.Getenv("APP_BASE_URL")
	if handlers.AppBaseURL == "" {
		handlers.AppBaseURL = "http://localhost:8080"
	}
	/* PAYMENTS SETUP ENDS */

	/* ROUTING STARTS */
	router := gin.Default()

	env := os.Getenv("APP_ENV")

	var corsConfig cors.Config
	if env == "debug" || env == "development" {
		// Development: Allow all origins
		corsConfig = cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	} else {
		corsConfig = cors.Config{
			AllowOrigins:     []string{"https://dynetap.com"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	}

	router.Use(cors.New(corsConfig))

	// --- Authentication Routes ---
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handlers.RegisterHandler)
		authGroup.POST("/login", handlers.LoginHandler)
	}

	// --- Public/Diner Routes --- (Auth token not needed)
	publicGroup := router.Group("/public")
	{
		publicGroup.GET("/menus/:slug", handlers.GetPublicMenuBySlugHandler)
		publicGroup.POST("/checkout", handlers.InitiateCheckoutHandler)
		publicGroup.POST("/checkout/session", handlers.OrderSessionHandler)
		publicGroup.GET("/orders/:order_number", handlers.GetOrderStatusHandler)
	}

	// --- Payment Gateway Webhooks ---
	router.POST("/api/webhooks/yoco", handlers.YocoWebhookHandler)

	// --- Owner Protected Routes ---
	ownerRoutes := router.Group("/owner", handlers.AuthMiddleware())
	{
		menuRoutes := ownerRoutes.Group("/menus")
		{
			menuRoutes.POST("", handlers.CreateMenuHandler)
			menuRoutes.GET("", handlers.GetMyMenusHandler)

			menuRoutes.GET("/:menu_id", handlers.GetMenuHandler)
			menuRoutes.PUT("/:menu_id", handlers.UpdateMenuHandler)
			menuRoutes.DELETE("/:menu_id", handlers.DeleteMenuHandler)
			menuRoutes.POST("/:menu_id/publish", handlers.PublishMenuHandler)
			menuRoutes.POST("/:menu_id/unpublish", handlers.UnpublishMenuHandler)

			// Menu content management (nested under specific menu)
			categoryRoutes := menuRoutes.Group("/:menu_id/categories")
			{
				categoryRoutes.POST("", handlers.CreateCategoryHandler)
				categoryRoutes.GET("", handlers.ListCategoriesHandler)
				categoryRoutes.PUT("/:category_id", handlers.UpdateCategoryHandler)
				categoryRoutes.DELETE("/:category_id", handlers.DeleteCategoryHandler)
			}

			dishRoutes := menuRoutes.Group("/:menu_id/dishes")
			{
				dishRoutes.POST("", handlers.CreateDishHandler)
				dishRoutes.GET("", handlers.ListDishesHandler)
				dishRoutes.PUT("/:dish_id", handlers.UpdateDishHandler)
				dishRoutes.DELETE("/:dish_id", handlers.DeleteDishHandler)
			}

			// Kanban board and analytics (for a specific menu they own)
			orderRoutes := menuRoutes.Group("/:menu_id/orders")
			{
				orderRoutes.GET("", handlers.GetOrdersByMenuHandler)
				orderRoutes.GET("/history", handlers.GetOrderHistoryHandler)
			}
		}

		// Order Management (menu-agnostic)
		ownerOrderRoutes := ownerRoutes.Group("/orders")
		{
			ownerOrderRoutes.PUT("/:order_id/status", handlers.UpdateOrderStatusHandler)
		}
	}

	/* ROUTING ENDS */

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server listening on port :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
