package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dynetap-go/models"
	"dynetap-go/yoco"
)

// CheckoutItemRequest is part of InitiateCheckoutRequest. Clients only ever
// send dish ids and quantities; prices always come from the database.
type CheckoutItemRequest struct {
	DishID   uint  `json:"dish_id" binding:"required"`
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

type InitiateCheckoutRequest struct {
	MenuID        uint                  `json:"menu_id" binding:"required"`
	OrderNumber   string                `json:"order_number" binding:"required,len=5,numeric"`
	Items         []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
	CustomerEmail string                `json:"customer_email" binding:"required,email"`
	CustomerPhone string                `json:"customer_phone" binding:"required,min=10"`
	TableNumber   string                `json:"table_number" binding:"max=10"`
	Notes         string                `json:"notes" binding:"max=500"`
}

type OrderSessionRequest struct {
	MenuID      uint   `json:"menu_id" binding:"required"`
	Action      string `json:"action" binding:"required,oneof=create join"`
	OrderNumber string `json:"order_number" binding:"omitempty,len=5,numeric"`
}

// metadataItem is the order line snapshot packed into checkout metadata so
// the webhook can materialize OrderItems once payment lands.
type metadataItem struct {
	DishID       uint   `json:"dish_id"`
	Name         string `json:"name"`
	PriceInCents int64  `json:"price_in_cents"`
	Quantity     int64  `json:"quantity"`
}

// InitiateCheckoutHandler turns a client cart into a hosted Yoco checkout
// session. No Order row is created here: the order only materializes when the
// payment webhook confirms payment. The caller must redirect the customer's
// browser to the returned redirect_url.
func InitiateCheckoutHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	var req InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var menu models.Menu
	if err := DB.First(&menu, req.MenuID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Fetch all dishes at once, constrained to this menu so a dish id from
	// another menu can never price this cart.
	dishIDs := []uint{}
	for _, item := range req.Items {
		dishIDs = append(dishIDs, item.DishID)
	}

	var dishesFromDB []models.Dish
	if err := DB.Where("id IN ? AND menu_id = ?", dishIDs, menu.ID).Find(&dishesFromDB).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dishMap := make(map[uint]models.Dish)
	for _, dish := range dishesFromDB {
		dishMap[dish.ID] = dish
	}

	// Authoritative total from current persisted prices, in cents.
	var totalPriceInCents int64 = 0
	items := []metadataItem{}
	for _, item := range req.Items {
		dish, exists := dishMap[item.DishID]
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Dish %d not found in this menu", item.DishID)})
			return
		}
		totalPriceInCents += dish.PriceInCents * item.Quantity
		items = append(items, metadataItem{
			DishID:       dish.ID,
			Name:         dish.Name,
			PriceInCents: dish.PriceInCents,
			Quantity:     item.Quantity,
		})
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode order items"})
		return
	}

	// The metadata is the only channel through which the webhook learns which
	// order it is completing.
	checkout, err := Yoco.CreateCheckout(c.Request.Context(), yoco.CheckoutRequest{
		Amount:   totalPriceInCents,
		Currency: "ZAR",
		Metadata: map[string]string{
			"orderNumber":   req.OrderNumber,
			"menuId":        strconv.FormatUint(uint64(menu.ID), 10),
			"customerEmail": req.CustomerEmail,
			"customerPhone": req.CustomerPhone,
			"tableNumber":   req.TableNumber,
			"notes":         req.Notes,
			"items":         string(itemsJSON),
		},
		// Reference only. Payment is confirmed by the webhook, never by the
		// customer reaching the success URL.
		SuccessURL: fmt.Sprintf("%s/checkout/success?orderNumber=%s", AppBaseURL, req.OrderNumber),
		FailureURL: fmt.Sprintf("%s/checkout/failure?orderNumber=%s", AppBaseURL, req.OrderNumber),
	})
	if err != nil {
		log.Printf("Yoco checkout creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_id":          checkout.ID,
		"redirect_url":         checkout.RedirectURL,
		"total_price_in_cents": totalPriceInCents,
		"order_number":         req.OrderNumber,
	})
}

// OrderSessionHandler creates a new shared order session number, or validates
// one another device at the table wants to join. Sessions have no server-side
// row until payment succeeds.
func OrderSessionHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	var req OrderSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var menu models.Menu
	if err := DB.First(&menu, req.MenuID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case "create":
		orderNumber := yoco.GenerateOrderNumber()
		c.JSON(http.StatusOK, gin.H{
			"order_number": orderNumber,
			"action":       "create",
			"message":      fmt.Sprintf("Order #%s created. Share this number with others to add items together.", orderNumber),
		})

	case "join":
		if req.OrderNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order number required to join"})
			return
		}

		// A session that already paid out has become a permanent order and
		// can no longer be joined.
		var existingOrder models.Order
		err := DB.Where("order_number = ? AND menu_id = ?", req.OrderNumber, menu.ID).First(&existingOrder).Error
		if err == nil && existingOrder.PaymentStatus != models.PaymentStatusUnpaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This order number is not available to join"})
			return
		}
		if err != nil && err != gorm.ErrRecordNotFound {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order_number": req.OrderNumber,
			"action":       "join",
			"valid":        true,
			"message":      fmt.Sprintf("Successfully joined order #%s", req.OrderNumber),
		})
	}
}
