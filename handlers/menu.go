package handlers

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dynetap-go/models"
	"dynetap-go/utils"
)

type CreateMenuRequest struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address" binding:"required"`
	City          string `json:"city" binding:"required"`
	ContactNumber string `json:"contact_number"`
}

type UpdateMenuRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ContactNumber string `json:"contact_number"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateMenuSlug builds a URL-safe slug from the menu name and city plus a
// random 3-digit suffix, e.g. "ocean-basket-cape-town-374".
func GenerateMenuSlug(name, city string) string {
	slug := strings.ToLower(name + " " + city)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s-%03d", slug, rand.Intn(1000))
}

// CheckMenuOwnership loads the menu and verifies the authenticated user owns
// it. On failure it writes the error response and returns (nil, false).
func CheckMenuOwnership(c *gin.Context, menuIDString string) (*models.Menu, bool) {

	if DB == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database not initialized"})
		return nil, false
	}

	userClaimsInterface, _ := c.Get(UserClaimsHandlerKey)
	if userClaimsInterface == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User not recognized"})
		return nil, false
	}
	userClaims := userClaimsInterface.(*utils.Claims)

	var menu models.Menu
	if err := DB.First(&menu, menuIDString).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
			return nil, false
		}

		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Menu not found"})
		return nil, false
	}

	if menu.UserID != userClaims.UserID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have access to this menu"})
		return nil, false
	}

	return &menu, true
}

func CreateMenuHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	var request CreateMenuRequest
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

	menu := models.Menu{
		Name:          request.Name,
		Address:       request.Address,
		City:          request.City,
		ContactNumber: request.ContactNumber,
		Slug:          GenerateMenuSlug(request.Name, request.City),
		IsPublished:   false,
		UserID:        userClaims.UserID,
	}

	if err := DB.Create(&menu).Error; err != nil {
		log.Printf("Failed to create menu %v: %v", menu.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"menu": menu})
}

func GetMyMenusHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	userClaimsInterface, _ := c.Get(UserClaimsHandlerKey)
	if userClaimsInterface == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User authentication details not found"})
		return
	}
	userClaims := userClaimsInterface.(*utils.Claims)

	var menus []models.Menu
	if err := DB.Where("user_id = ?", userClaims.UserID).Find(&menus).Error; err != nil {
		log.Printf("Failed to get menus for user %v: %v", userClaims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menus: " + err.Error()})
		return
	}

	if menus == nil {
		menus = []models.Menu{}
	}

	c.JSON(http.StatusOK, gin.H{"menus": menus})
}

func GetMenuHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var fullMenu models.Menu
	if err := DB.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Dishes").
		First(&fullMenu, menu.ID).Error; err != nil {
		log.Printf("Failed to load menu %d: %v", menu.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menu: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": fullMenu})
}

func UpdateMenuHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")

	var request UpdateMenuRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON error: " + err.Error()})
		return
	}

	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	updateData := models.Menu{
		Name:          request.Name,
		Address:       request.Address,
		City:          request.City,
		ContactNumber: request.ContactNumber,
	}
	if request.Name != "" || request.City != "" {
		name := menu.Name
		city := menu.City
		if request.Name != "" {
			name = request.Name
		}
		if request.City != "" {
			city = request.City
		}
		updateData.Slug = GenerateMenuSlug(name, city)
	}

	if err := DB.Model(menu).Updates(updateData).Error; err != nil {
		log.Printf("Failed to update menu %v: %v", menuIDString, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": menu})
}

func DeleteMenuHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	if err := DB.Delete(menu).Error; err != nil {
		log.Printf("Failed to delete menu %v: %v", menuIDString, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu deleted successfully"})
}

func PublishMenuHandler(c *gin.Context) {
	setMenuPublished(c, true)
}

func UnpublishMenuHandler(c *gin.Context) {
	setMenuPublished(c, false)
}

func setMenuPublished(c *gin.Context, published bool) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	if err := DB.Model(menu).Update("is_published", published).Error; err != nil {
		log.Printf("Failed to update menu %v: %v", menuIDString, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": menu})
}

// GetPublicMenuBySlugHandler serves the menu page behind the table QR code.
// Unpublished menus are invisible to the public.
func GetPublicMenuBySlugHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	slug := c.Param("slug")

	var menu models.Menu
	if err := DB.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Dishes").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&menu).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
			return
		}
		log.Printf("Failed to get menu %v: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menu: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": menu})
}
