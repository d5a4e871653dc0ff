package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dynetap-go/models"
)

type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
}

func CreateCategoryHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var request CreateCategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{
		MenuID:    menu.ID,
		Name:      request.Name,
		SortOrder: request.SortOrder,
	}

	if err := DB.Create(&category).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func ListCategoriesHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var categories []models.Category
	if err := DB.Where("menu_id = ?", menu.ID).Order("sort_order ASC").Find(&categories).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories: " + err.Error()})
		return
	}

	if categories == nil {
		categories = []models.Category{}
	}

	c.JSON(http.StatusOK, categories)
}

func UpdateCategoryHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	categoryIDString := c.Param("category_id")

	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var request UpdateCategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := DB.Where("id = ? AND menu_id = ?", categoryIDString, menu.ID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Category not found"})
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
	if request.SortOrder != nil {
		updates["sort_order"] = *request.SortOrder
	}

	if len(updates) > 0 {
		if err := DB.Model(&category).Updates(updates).Error; err != nil {
			log.Println(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategoryHandler removes a category. Dishes referencing it keep
// existing with a dangling-free nil category.
func DeleteCategoryHandler(c *gin.Context) {
	menuIDString := c.Param("menu_id")
	categoryIDString := c.Param("category_id")

	menu, owned := CheckMenuOwnership(c, menuIDString)
	if !owned {
		return
	}

	var category models.Category
	if err := DB.Where("id = ? AND menu_id = ?", categoryIDString, menu.ID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Detach dishes before deleting so they fall back to "uncategorized".
	if err := DB.Model(&models.Dish{}).Where("category_id = ?", category.ID).Update("category_id", nil).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := DB.Delete(&category).Error; err != nil {
		log.Println(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
