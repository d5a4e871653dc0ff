package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dynetap-go/models"
	"dynetap-go/yoco"
)

// YocoWebhookHandler consumes asynchronous payment events from Yoco. This is
// the sole authoritative source of payment confirmation: orders are created
// here, never at checkout initiation.
//
// Any event that was interpreted gets a 200, including ignored ones, so the
// gateway stops retrying. Non-200 is reserved for signature/parse failures
// and genuine processing errors.
func YocoWebhookHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not initialized"})
		return
	}

	// Signature must be verified over the raw body bytes as received.
	body, err := c.GetRawData()
	if err != nil {
		log.Printf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("x-yoco-signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing signature header"})
		return
	}

	if !yoco.VerifySignature(body, signature, WebhookSecret) {
		log.Println("Invalid Yoco webhook signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	event, err := yoco.ParseWebhook(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	log.Printf("Received Yoco webhook: %s", event.Type)

	switch event.Type {
	case yoco.EventPaymentNotification:
		handlePaymentNotification(c, event)
	case yoco.EventRefundNotification:
		handleRefundNotification(c, event)
	default:
		log.Printf("Unknown webhook type: %s", event.Type)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown webhook type"})
	}
}

func handlePaymentNotification(c *gin.Context, event *yoco.WebhookEvent) {
	checkout := event.Data.Checkout
	payment := event.Data.Payment

	// Failed and pending payments are acknowledged but never create orders.
	if payment.Status != yoco.PaymentSuccess {
		log.Printf("Ignoring non-success payment status: %s", payment.Status)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	metadata := checkout.Metadata
	if metadata["orderNumber"] == "" || metadata["menuId"] == "" {
		log.Println("Missing required metadata in webhook")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing metadata"})
		return
	}

	menuID, err := strconv.ParseUint(metadata["menuId"], 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing metadata"})
		return
	}

	// Yoco retries delivery; the charge id is the dedup key. An already
	// processed event is a success, not an error.
	var existing models.Order
	err = DB.Where("yoco_charge_id = ? OR yoco_checkout_id = ?", payment.ID, checkout.ID).First(&existing).Error
	if err == nil {
		log.Printf("Duplicate payment_notification for charge %s, order %d already exists", payment.ID, existing.ID)
		c.JSON(http.StatusOK, gin.H{"success": true, "order_id": existing.ID})
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("Error looking up order for charge %s: %v", payment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	// Contact details come from metadata. A missing value falls back to a
	// sentinel; a paid order is never rejected over contact fields.
	customerEmail := metadata["customerEmail"]
	if customerEmail == "" {
		customerEmail = "unknown@example.com"
	}
	customerPhone := metadata["customerPhone"]
	if customerPhone == "" {
		customerPhone = "unknown"
	}
	var tableNumber *string
	if v := metadata["tableNumber"]; v != "" {
		tableNumber = &v
	}
	var notes *string
	if v := metadata["notes"]; v != "" {
		notes = &v
	}

	order := models.Order{
		OrderNumber:       metadata["orderNumber"],
		MenuID:            uint(menuID),
		YocoChargeID:      payment.ID,
		YocoCheckoutID:    checkout.ID,
		CustomerEmail:     customerEmail,
		CustomerPhone:     customerPhone,
		TableNumber:       tableNumber,
		Notes:             notes,
		TotalPriceInCents: checkout.Amount,
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPaid,
		Items:             orderItemsFromMetadata(metadata["items"]),
	}

	if err := DB.Create(&order).Error; err != nil {
		log.Printf("Error creating order from payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	log.Printf("Order %d created from payment_notification", order.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": order.ID})
}

// orderItemsFromMetadata restores the line item snapshots packed into the
// checkout metadata at initiation time. A missing or malformed snapshot just
// yields an itemless order; the payment still counts.
func orderItemsFromMetadata(itemsJSON string) []models.OrderItem {
	if itemsJSON == "" {
		return nil
	}

	var snapshots []metadataItem
	if err := json.Unmarshal([]byte(itemsJSON), &snapshots); err != nil {
		log.Printf("Failed to parse items metadata: %v", err)
		return nil
	}

	items := make([]models.OrderItem, 0, len(snapshots))
	for _, snapshot := range snapshots {
		items = append(items, models.OrderItem{
			DishID:              snapshot.DishID,
			DishName:            snapshot.Name,
			Quantity:            snapshot.Quantity,
			PriceInCentsAtOrder: snapshot.PriceInCents,
		})
	}
	return items
}

func handleRefundNotification(c *gin.Context, event *yoco.WebhookEvent) {
	checkout := event.Data.Checkout
	payment := event.Data.Payment

	var order models.Order
	err := DB.Where("yoco_charge_id = ? OR yoco_checkout_id = ?", payment.ID, checkout.ID).First(&order).Error
	if err == gorm.ErrRecordNotFound {
		// Refund for an order we never saw. Returning an error would only
		// make the gateway retry, so acknowledge and move on.
		log.Printf("Refund webhook received but no matching order found: %s", payment.ID)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if err != nil {
		log.Printf("Error processing refund: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund"})
		return
	}

	if err := DB.Model(&order).Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
		log.Printf("Error processing refund: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund"})
		return
	}

	log.Printf("Order %d refunded", order.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
