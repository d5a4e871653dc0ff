package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynetap-go/models"
)

func authedRequest(router http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		encoded, _ := json.Marshal(payload)
		body = bytes.NewBuffer(encoded)
	} else {
		body = bytes.NewBuffer(nil)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	router := newTestRouter()

	w := authedRequest(router, "POST", "/auth/register", "", map[string]string{
		"email": "owner@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Duplicate registration conflicts.
	w = authedRequest(router, "POST", "/auth/register", "", map[string]string{
		"email": "owner@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = authedRequest(router, "POST", "/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])

	w = authedRequest(router, "POST", "/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateMenuGeneratesSlug(t *testing.T) {
	setupTestDB(t)
	router := newTestRouter()
	db := DB

	_, token := createTestOwner(t, db, "owner@example.com")

	w := authedRequest(router, "POST", "/owner/menus", token, map[string]string{
		"name": "Ocean Basket", "address": "12 Long Street", "city": "Cape Town",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Menu models.Menu `json:"menu"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^ocean-basket-cape-town-\d{3}$`, resp.Menu.Slug)
	assert.False(t, resp.Menu.IsPublished, "new menus start unpublished")
}

func TestPublicMenuVisibilityGatedByPublication(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	owner, token := createTestOwner(t, db, "owner@example.com")
	menu := createTestMenu(t, db, owner.ID, false)
	createTestDish(t, db, menu.ID, "Burger", 12000)

	w := authedRequest(router, "GET", "/public/menus/"+menu.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "unpublished menu must be invisible")

	w = authedRequest(router, "POST", fmt.Sprintf("/owner/menus/%d/publish", menu.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = authedRequest(router, "GET", "/public/menus/"+menu.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Menu models.Menu `json:"menu"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Menu.Dishes, 1)
	assert.Equal(t, int64(12000), resp.Menu.Dishes[0].PriceInCents)

	w = authedRequest(router, "POST", fmt.Sprintf("/owner/menus/%d/unpublish", menu.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = authedRequest(router, "GET", "/public/menus/"+menu.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	owner, _ := createTestOwner(t, db, "owner@example.com")
	_, intruderToken := createTestOwner(t, db, "intruder@example.com")
	menu := createTestMenu(t, db, owner.ID, true)

	w := authedRequest(router, "GET", fmt.Sprintf("/owner/menus/%d", menu.ID), intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = authedRequest(router, "DELETE", fmt.Sprintf("/owner/menus/%d", menu.ID), intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unauthenticated requests never reach the handler.
	w = authedRequest(router, "GET", fmt.Sprintf("/owner/menus/%d", menu.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoryAndDishCRUD(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	owner, token := createTestOwner(t, db, "owner@example.com")
	menu := createTestMenu(t, db, owner.ID, true)

	w := authedRequest(router, "POST", fmt.Sprintf("/owner/menus/%d/categories", menu.ID), token, map[string]interface{}{
		"name": "Mains", "sort_order": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	w = authedRequest(router, "POST", fmt.Sprintf("/owner/menus/%d/dishes", menu.ID), token, map[string]interface{}{
		"name": "Burger", "description": "Beef, brioche", "price_in_cents": 12000, "category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dish models.Dish
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dish))
	require.NotNil(t, dish.CategoryID)
	assert.Equal(t, category.ID, *dish.CategoryID)

	// A dish cannot point at another menu's category.
	otherMenu := createTestMenu(t, db, owner.ID, true)
	w = authedRequest(router, "POST", fmt.Sprintf("/owner/menus/%d/dishes", otherMenu.ID), token, map[string]interface{}{
		"name": "Sushi", "price_in_cents": 9000, "category_id": category.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Price updates land in cents.
	w = authedRequest(router, "PUT", fmt.Sprintf("/owner/menus/%d/dishes/%d", menu.ID, dish.ID), token, map[string]interface{}{
		"price_in_cents": 13500,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Dish
	require.NoError(t, db.First(&updated, dish.ID).Error)
	assert.Equal(t, int64(13500), updated.PriceInCents)

	// Deleting the category detaches its dishes instead of orphaning them.
	w = authedRequest(router, "DELETE", fmt.Sprintf("/owner/menus/%d/categories/%d", menu.ID, category.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&updated, dish.ID).Error)
	assert.Nil(t, updated.CategoryID)

	w = authedRequest(router, "DELETE", fmt.Sprintf("/owner/menus/%d/dishes/%d", menu.ID, dish.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
