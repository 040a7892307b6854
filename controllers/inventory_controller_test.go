package controllers

import (
	"net/http"
	"testing"

	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoryRouter() *gin.Engine {
	router := setupTestRouter()
	router.GET("/inventory", ListInventory)
	router.POST("/inventory", CreateInventory)
	router.GET("/inventory/:id", GetInventory)
	router.PUT("/inventory/:id", UpdateInventory)
	router.DELETE("/inventory/:id", DeleteInventory)
	router.GET("/inventory-transactions", ListInventoryTransactions)
	router.POST("/inventory-transactions", CreateInventoryTransaction)
	router.GET("/inventory-transactions/:id", GetInventoryTransaction)
	router.PUT("/inventory-transactions/:id", UpdateInventoryTransaction)
	router.DELETE("/inventory-transactions/:id", DeleteInventoryTransaction)
	return router
}

func TestCreateInventory(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := inventoryRouter()
	testutil.CreateInventory(t, db, func(i *models.Inventory) { i.InventoryCode = "PART-TAKEN" })

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedFields []string
	}{
		{
			name: "valid part",
			body: map[string]interface{}{
				"inventory_code": "PART-0001",
				"part_name":      "Contactor 30A",
				"part_number":    "CT-30A",
				"category":       "electrical",
				"stock":          12,
				"min_stock":      4,
				"location":       "San Diego",
				"unit_price":     18.75,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid category and location",
			body: map[string]interface{}{
				"inventory_code": "PART-0002",
				"part_name":      "Thing",
				"part_number":    "X-1",
				"category":       "misc",
				"location":       "Ensenada",
			},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"category", "location"},
		},
		{
			name: "negative stock",
			body: map[string]interface{}{
				"inventory_code": "PART-0003",
				"part_name":      "Filter 16x25x1",
				"part_number":    "F-16251",
				"category":       "filters",
				"stock":          -1,
			},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"stock"},
		},
		{
			name: "duplicate code",
			body: map[string]interface{}{
				"inventory_code": "PART-TAKEN",
				"part_name":      "Filter 20x20x1",
				"part_number":    "F-20201",
				"category":       "filters",
			},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"inventory_code"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodPost, "/inventory", tt.body)
			if tt.expectedStatus == http.StatusCreated {
				require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
				data := responseData(t, w)
				assert.Equal(t, true, data["is_active"])
				assert.Equal(t, "San Diego", data["location"])
				return
			}
			fields := assertError(t, w, tt.expectedStatus, "VALIDATION_ERROR")
			for _, f := range tt.expectedFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestListInventory_FiltersAndSort(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := inventoryRouter()
	testutil.CreateInventory(t, db, func(i *models.Inventory) { i.PartName, i.Stock, i.Category = "Blower Motor", 3, "hvac" })
	testutil.CreateInventory(t, db, func(i *models.Inventory) { i.PartName, i.Stock, i.Category = "Pleated Filter", 40, "filters" })
	testutil.CreateInventory(t, db, func(i *models.Inventory) { i.PartName, i.Stock, i.Category = "Motor Mount", 8, "hvac" })

	w := performRequest(t, router, http.MethodGet, "/inventory?filter[part_name]=motor&sort=stock", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	items := responseList(t, w)
	require.Len(t, items, 2)
	assert.Equal(t, "Blower Motor", items[0].(map[string]interface{})["part_name"])
	assert.Equal(t, "Motor Mount", items[1].(map[string]interface{})["part_name"])

	w = performRequest(t, router, http.MethodGet, "/inventory?sort=-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items = responseList(t, w)
	require.Len(t, items, 3)
	assert.Equal(t, 40.0, items[0].(map[string]interface{})["stock"])
}

func TestUpdateInventory(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := inventoryRouter()
	item := testutil.CreateInventory(t, db)

	w := performRequest(t, router, http.MethodPut, "/inventory/"+item.ID.String(), map[string]interface{}{
		"stock":          25,
		"last_restocked": "2025-05-02",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	data := responseData(t, w)
	assert.Equal(t, 25.0, data["stock"])
	assert.Equal(t, "2025-05-02", data["last_restocked"])
	assert.Equal(t, item.PartName, data["part_name"])
}

func TestCreateInventoryTransaction(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := inventoryRouter()
	item := testutil.CreateInventory(t, db)
	client := testutil.CreateClient(t, db)
	wo := testutil.CreateWorkOrder(t, db, testutil.CreateJob(t, db, client.ID))

	t.Run("total cost and created_by default", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"inventory_id":     item.ID.String(),
			"work_order_id":    wo.ID.String(),
			"transaction_type": "deduction",
			"quantity":         5,
			"unit_price":       12.5,
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

		data := responseData(t, w)
		assert.Equal(t, 62.5, data["total_cost"])
		assert.Equal(t, testUserID, data["created_by"])
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"inventory_id":     item.ID.String(),
			"transaction_type": "restock",
			"quantity":         10,
			"unit_price":       12.5,
			"total_cost":       100,
			"created_by":       "warehouse",
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

		data := responseData(t, w)
		assert.Equal(t, 100.0, data["total_cost"])
		assert.Equal(t, "warehouse", data["created_by"])
	})

	t.Run("no unit price leaves total empty", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"inventory_id":     item.ID.String(),
			"transaction_type": "adjustment",
			"quantity":         -2,
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
		assert.Nil(t, responseData(t, w)["total_cost"])
	})

	t.Run("zero quantity adjustment is accepted", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"inventory_id":     item.ID.String(),
			"transaction_type": "adjustment",
			"quantity":         0,
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
		assert.Equal(t, 0.0, responseData(t, w)["quantity"])
	})

	t.Run("missing quantity", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"inventory_id":     item.ID.String(),
			"transaction_type": "adjustment",
		})
		fields := assertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		assert.Equal(t, []interface{}{"The quantity field is required."}, fields["quantity"])
	})

	t.Run("missing inventory and bad type", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"transaction_type": "theft",
			"quantity":         1,
		})
		fields := assertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		assert.Contains(t, fields, "transaction_type")
	})

	t.Run("unknown references", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"inventory_id":     "7d0f4f6e-5c7e-4a5b-9a47-3f7a0d2e9b11",
			"work_order_id":    "7d0f4f6e-5c7e-4a5b-9a47-3f7a0d2e9b12",
			"transaction_type": "deduction",
			"quantity":         1,
		})
		fields := assertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		assert.Equal(t, []interface{}{"The selected inventory_id is invalid."}, fields["inventory_id"])
		assert.Equal(t, []interface{}{"The selected work_order_id is invalid."}, fields["work_order_id"])
	})
}

func TestListInventoryTransactions_Include(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := inventoryRouter()
	item := testutil.CreateInventory(t, db)
	other := testutil.CreateInventory(t, db)

	for _, inv := range []models.Inventory{item, item, other} {
		w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
			"inventory_id":     inv.ID.String(),
			"transaction_type": "restock",
			"quantity":         1,
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	}

	w := performRequest(t, router, http.MethodGet, "/inventory-transactions?filter[inventory_id]="+item.ID.String()+"&include=inventory", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	items := responseList(t, w)
	require.Len(t, items, 2)
	inventory := items[0].(map[string]interface{})["inventory"].(map[string]interface{})
	assert.Equal(t, item.InventoryCode, inventory["inventory_code"])
}

func TestDeleteInventory_CascadesTransactions(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := inventoryRouter()
	item := testutil.CreateInventory(t, db)

	w := performRequest(t, router, http.MethodPost, "/inventory-transactions", map[string]interface{}{
		"inventory_id":     item.ID.String(),
		"transaction_type": "restock",
		"quantity":         4,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, router, http.MethodDelete, "/inventory/"+item.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	db.Model(&models.InventoryTransaction{}).Count(&count)
	assert.Zero(t, count)
}
