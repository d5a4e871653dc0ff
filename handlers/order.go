package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dynetap-go/models"
	"dynetap-go/utils"
)

type UpdateOrderStatusRequest struct {
	NewStatus models.OrderStatus `json:"new_status" binding:"required,oneof=preparing served cancelled"`
}

// GetOrderStatusHandler is the public tracking lookup: anyone holding the
// 5-digit order number can poll it. 404 until the payment webhook has
// materialized the order.
func GetOrderStatusHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not initialized"})
		return
	}

	orderNumber := c.Param("order_number")

	var order models.Order
	if err := DB.Preload("Items").
		Where("order_number = ?", orderNumber).
		Order("created_at DESC").
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Printf("Failed to get order %v: %v", orderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrdersByMenuHandler feeds the owner's kanban board. Only paid orders are
// ever visible to management views.
func GetOrdersByMenuHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	limit := 50
	if limitQuery := c.Query("limit"); limitQuery != "" {
		if parsed, err := strconv.Atoi(limitQuery); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if offsetQuery := c.Query("offset"); offsetQuery != "" {
		if parsed, err := strconv.Atoi(offsetQuery); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	query := DB.Model(&models.Order{}).
		Where("menu_id = ? AND payment_status = ?", menu.ID, models.PaymentStatusPaid)

	if statusFilter := c.Query("status"); statusFilter != "" {
		status := models.OrderStatus(statusFilter)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count orders for menu %d: %v", menu.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var orders []models.Order
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		log.Printf("Failed to get orders for menu %d: %v", menu.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

// UpdateOrderStatusHandler moves a paid order through the kitchen lifecycle.
// Ownership is checked through the order's menu; the transition table in
// models is the only authority on which moves are legal.
func UpdateOrderStatusHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not initialized"})
		return
	}

	orderIDString := c.Param("order_id")

	var request UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userClaimsInterface, _ := c.Get(UserClaimsHandlerKey)
	if userClaimsInterface == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User authentication details not found"})
		return
	}
	userClaims := userClaimsInterface.(*utils.Claims)

	var order models.Order
	if err := DB.Preload("Menu").First(&order, orderIDString).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Printf("Failed to get order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if order.Menu.UserID != userClaims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this order"})
		return
	}

	if order.PaymentStatus != models.PaymentStatusPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Can only update status for paid orders"})
		return
	}

	if !order.Status.CanTransitionTo(request.NewStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Cannot transition from %s to %s", order.Status, request.NewStatus),
		})
		return
	}

	if err := DB.Model(&order).Updates(map[string]interface{}{
		"status":     request.NewStatus,
		"updated_at": time.Now(),
	}).Error; err != nil {
		log.Printf("Failed to update order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var updatedOrder models.Order
	if err := DB.Preload("Items").First(&updatedOrder, order.ID).Error; err != nil {
		log.Printf("Failed to get order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updatedOrder)
}

// GetOrderHistoryHandler aggregates paid orders for the analytics dashboard:
// revenue, counts, status breakdown, and the ten most ordered dishes.
func GetOrderHistoryHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	query := DB.Model(&models.Order{}).
		Where("menu_id = ? AND payment_status = ?", menu.ID, models.PaymentStatusPaid)

	if startDate := c.Query("start_date"); startDate != "" {
		parsed, err := time.Parse(time.RFC3339, startDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected RFC3339"})
			return
		}
		query = query.Where("created_at >= ?", parsed)
	}
	if endDate := c.Query("end_date"); endDate != "" {
		parsed, err := time.Parse(time.RFC3339, endDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected RFC3339"})
			return
		}
		query = query.Where("created_at <= ?", parsed)
	}

	var orders []models.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		log.Printf("Failed to get order history for menu %d: %v", menu.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var totalRevenueInCents int64 = 0
	statusBreakdown := map[models.OrderStatus]int{
		models.OrderStatusPending:   0,
		models.OrderStatusPreparing: 0,
		models.OrderStatusServed:    0,
		models.OrderStatusCancelled: 0,
	}
	type dishStats struct {
		Name           string `json:"name"`
		Count          int64  `json:"count"`
		RevenueInCents int64  `json:"revenue_in_cents"`
	}
	dishCounts := map[uint]*dishStats{}

	for _, order := range orders {
		totalRevenueInCents += order.TotalPriceInCents
		statusBreakdown[order.Status]++
		for _, item := range order.Items {
			stats, ok := dishCounts[item.DishID]
			if !ok {
				stats = &dishStats{Name: item.DishName}
				dishCounts[item.DishID] = stats
			}
			stats.Count += item.Quantity
			stats.RevenueInCents += item.PriceInCentsAtOrder * item.Quantity
		}
	}

	popularDishes := []dishStats{}
	for _, stats := range dishCounts {
		popularDishes = append(popularDishes, *stats)
	}
	sort.Slice(popularDishes, func(i, j int) bool {
		return popularDishes[i].Count > popularDishes[j].Count
	})
	if len(popularDishes) > 10 {
		popularDishes = popularDishes[:10]
	}

	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":                 orders,
		"total_revenue_in_cents": totalRevenueInCents,
		"order_count":            len(orders),
		"status_breakdown":       statusBreakdown,
		"popular_dishes":         popularDishes,
	})
}
