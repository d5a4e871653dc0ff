package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dynetap-go/models"
)

type CreateDishRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	PriceInCents int64  `json:"price_in_cents" binding:"required,gt=0"`
	CategoryID   *uint  `json:"category_id"`
}

type UpdateDishRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	PriceInCents *int64  `json:"price_in_cents" binding:"omitempty,gt=0"`
	CategoryID   *uint   `json:"category_id"`
}

func CreateDishHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var request CreateDishRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// An empty category is allowed; a stated one must belong to this menu.
	if request.CategoryID != nil {
		var category models.Category
		if err := DB.Where("id = ? AND menu_id = ?", *request.CategoryID, menu.ID).First(&category).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Category does not belong to this menu"})
			return
		}
	}

	dish := &models.Dish{
		MenuID:       menu.ID,
		CategoryID:   request.CategoryID,
		Name:         request.Name,
		Description:  request.Description,
		PriceInCents: request.PriceInCents,
	}

	if err := DB.Create(&dish).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dish)
}

func ListDishesHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var dishes []models.Dish
	if err := DB.Where("menu_id = ?", menu.ID).Find(&dishes).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dishes: " + err.Error()})
		return
	}

	if dishes == nil {
		dishes = []models.Dish{}
	}

	c.JSON(http.StatusOK, dishes)
}

func UpdateDishHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	dishIDString := c.Param("dish_id")

	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var request UpdateDishRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dish models.Dish
	if err := DB.Where("id = ? AND menu_id = ?", dishIDString, menu.ID).First(&dish).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Dish not found"})
			return
		}
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Description != nil {
		updates["description"] = *request.Description
	}
	if request.PriceInCents != nil {
		updates["price_in_cents"] = *request.PriceInCents
	}
	if request.CategoryID != nil {
		var category models.Category
		if err := DB.Where("id = ? AND menu_id = ?", *request.CategoryID, menu.ID).First(&category).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Category does not belong to this menu"})
			return
		}
		updates["category_id"] = *request.CategoryID
	}

	if len(updates) > 0 {
		if err := DB.Model(&dish).Updates(updates).Error; err != nil {
			log.Println(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, dish)
}

func DeleteDishHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	dishIDString := c.Param("dish_id")

	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var dish models.Dish
	if err := DB.Where("id = ? AND menu_id = ?", dishIDString, menu.ID).First(&dish).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Dish not found"})
			return
		}
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := DB.Delete(&dish).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dish deleted successfully"})
}
