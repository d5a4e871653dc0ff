package handlers

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dynetap-go/models"
	"dynetap-go/utils"
)

// Create DB connection for tests. Each test gets its own named in-memory
// database so fixtures never leak between tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Menu{}, &models.Category{}, &models.Dish{},
		&models.Order{}, &models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	DB = db
	t.Cleanup(func() { DB = nil })
	return db
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/auth/register", RegisterHandler)
	r.POST("/auth/login", LoginHandler)

	r.GET("/public/menus/:slug", GetPublicMenuBySlugHandler)
	r.POST("/public/checkout", InitiateCheckoutHandler)
	r.POST("/public/checkout/session", OrderSessionHandler)
	r.GET("/public/orders/:order_number", GetOrderStatusHandler)

	r.POST("/api/webhooks/yoco", YocoWebhookHandler)

	owner := r.Group("/owner", AuthMiddleware())
	{
		owner.POST("/menus", CreateMenuHandler)
		owner.GET("/menus", GetMyMenusHandler)
		owner.GET("/menus/:menu_id", GetMenuHandler)
		owner.PUT("/menus/:menu_id", UpdateMenuHandler)
		owner.DELETE("/menus/:menu_id", DeleteMenuHandler)
		owner.POST("/menus/:menu_id/publish", PublishMenuHandler)
		owner.POST("/menus/:menu_id/unpublish", UnpublishMenuHandler)
		owner.POST("/menus/:menu_id/categories", CreateCategoryHandler)
		owner.GET("/menus/:menu_id/categories", ListCategoriesHandler)
		owner.PUT("/menus/:menu_id/categories/:category_id", UpdateCategoryHandler)
		owner.DELETE("/menus/:menu_id/categories/:category_id", DeleteCategoryHandler)
		owner.POST("/menus/:menu_id/dishes", CreateDishHandler)
		owner.GET("/menus/:menu_id/dishes", ListDishesHandler)
		owner.PUT("/menus/:menu_id/dishes/:dish_id", UpdateDishHandler)
		owner.DELETE("/menus/:menu_id/dishes/:dish_id", DeleteDishHandler)
		owner.GET("/menus/:menu_id/orders", GetOrdersByMenuHandler)
		owner.GET("/menus/:menu_id/orders/history", GetOrderHistoryHandler)
		owner.PUT("/orders/:order_id/status", UpdateOrderStatusHandler)
	}

	return r
}

func createTestOwner(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()

	user := models.User{Email: email}
	if err := user.HashPassword("password123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

func createTestMenu(t *testing.T, db *gorm.DB, userID uint, published bool) models.Menu {
	t.Helper()

	// Deterministic slug: the generated suffix is random and slugs are
	// unique, so fixtures pick their own.
	var existing int64
	db.Model(&models.Menu{}).Count(&existing)

	menu := models.Menu{
		Name:        "Ocean Basket",
		Slug:        fmt.Sprintf("ocean-basket-cape-town-%03d", existing),
		Address:     "12 Long Street",
		City:        "Cape Town",
		IsPublished: published,
		UserID:      userID,
	}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("failed to create menu: %v", err)
	}
	return menu
}

func createTestDish(t *testing.T, db *gorm.DB, menuID uint, name string, priceInCents int64) models.Dish {
	t.Helper()

	dish := models.Dish{MenuID: menuID, Name: name, PriceInCents: priceInCents}
	if err := db.Create(&dish).Error; err != nil {
		t.Fatalf("failed to create dish: %v", err)
	}
	return dish
}

// createTestOrder seeds a paid pending order as the webhook would have
// created it. Charge ids must stay unique per order.
func createTestOrder(t *testing.T, db *gorm.DB, menuID uint, orderNumber, chargeID string) models.Order {
	t.Helper()

	order := models.Order{
		OrderNumber:       orderNumber,
		MenuID:            menuID,
		YocoChargeID:      chargeID,
		YocoCheckoutID:    "ch_" + chargeID,
		CustomerEmail:     "diner@example.com",
		CustomerPhone:     "0821234567",
		TotalPriceInCents: 24000,
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPaid,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return order
}
