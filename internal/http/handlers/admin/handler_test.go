package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/provider"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type handlerEnv struct {
	db      *gorm.DB
	engine  *gin.Engine
	product *models.Product
}

func setupHandlerTest(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	models.DB = db

	stockCfg := &config.StockConfig{DefaultWarehouseCode: "MAIN", DefaultWarehouseName: "主仓"}
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	warehouses := service.NewWarehouseService(repository.NewWarehouseRepository(db), stockCfg)
	documents := service.NewStockDocumentService(repository.NewStockDocumentRepository(db), repository.NewStockLedgerRepository(db), productRepo, warehouses)
	stockActions := service.NewStockActionService(orderRepo, documents, warehouses, nil)

	container := &provider.Container{
		Config:               &config.Config{Stock: *stockCfg},
		OrderRepo:            orderRepo,
		ProductRepo:          productRepo,
		PaymentRepo:          paymentRepo,
		WarehouseService:     warehouses,
		StockDocumentService: documents,
		StockActionService:   stockActions,
		OrderService:         service.NewOrderService(orderRepo, productRepo, stockActions, 3),
		OrderFinanceService:  service.NewOrderFinanceService(orderRepo, paymentRepo, nil),
	}
	h := New(container)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("admin_id", uint(1))
		c.Next()
	})
	r.GET("/warehouses", h.ListWarehouses)
	r.POST("/stock-documents", h.CreateStockDocument)
	r.POST("/stock-documents/:id/void", h.VoidStockDocument)
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.GET("/orders/:id/transitions", h.GetOrderTransitions)
	r.GET("/orders/:id/status-history", h.ListOrderStatusHistory)

	product := &models.Product{SKU: fmt.Sprintf("SKU-H-%d", time.Now().UnixNano()), Name: "手柄", IsActive: true}
	require.NoError(t, db.Create(product).Error)

	return &handlerEnv{db: db, engine: r, product: product}
}

func (e *handlerEnv) do(t *testing.T, method, path string, body interface{}) apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (e *handlerEnv) receive(t *testing.T, qty int) models.StockDocument {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/stock-documents", gin.H{
		"type":     constants.StockDocTypeGRN,
		"lines":    []gin.H{{"product_id": e.product.ID, "quantity": qty}},
		"post_now": true,
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var document models.StockDocument
	require.NoError(t, json.Unmarshal(resp.Data, &document))
	return document
}

func TestCreateStockDocumentPostNow(t *testing.T) {
	env := setupHandlerTest(t)
	document := env.receive(t, 8)
	require.Equal(t, constants.StockDocStatusPosted, document.Status)

	var item models.InventoryItem
	require.NoError(t, env.db.Where("product_id = ?", env.product.ID).First(&item).Error)
	require.Equal(t, 8, item.OnHandQty)

	resp := env.do(t, http.MethodGet, "/warehouses", nil)
	require.Equal(t, 0, resp.StatusCode)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/stock-documents/%d/void", document.ID), nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/stock-documents/%d/void", document.ID), nil)
	require.Equal(t, 409, resp.StatusCode)
}

func TestCreateStockDocumentRejectsEmptyLines(t *testing.T) {
	env := setupHandlerTest(t)
	resp := env.do(t, http.MethodPost, "/stock-documents", gin.H{"type": constants.StockDocTypeGRN, "lines": []gin.H{}})
	require.Equal(t, 400, resp.StatusCode)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	env := setupHandlerTest(t)
	env.receive(t, 10)

	resp := env.do(t, http.MethodPost, "/orders", gin.H{
		"status": constants.OrderStatusPendingConfirmation,
		"items":  []gin.H{{"product_id": env.product.ID, "quantity": 4, "unit_price": "12.50"}},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var order models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	require.NotZero(t, order.ID)

	resp = env.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": constants.OrderStatusDelivered})
	require.Equal(t, 409, resp.StatusCode)
	var conflict struct {
		From    string   `json:"from"`
		To      string   `json:"to"`
		Allowed []string `json:"allowed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &conflict))
	require.Equal(t, constants.OrderStatusPendingConfirmation, conflict.From)
	require.Equal(t, constants.OrderStatusDelivered, conflict.To)
	require.Contains(t, conflict.Allowed, constants.OrderStatusConfirmed)

	resp = env.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": constants.OrderStatusConfirmed})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var result service.TransitionResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	require.True(t, result.Changed)
	require.Equal(t, service.StockActionReserve, result.StockAction)
	require.Empty(t, result.StockWarning)

	var item models.InventoryItem
	require.NoError(t, env.db.Where("product_id = ?", env.product.ID).First(&item).Error)
	require.Equal(t, 4, item.ReservedQty)
	require.Equal(t, 6, item.AvailableQty)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/orders/%d/transitions", order.ID), nil)
	require.Equal(t, 0, resp.StatusCode)
	var transitions struct {
		OrderStatus string   `json:"order_status"`
		Allowed     []string `json:"allowed"`
		Terminal    bool     `json:"terminal"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &transitions))
	require.Equal(t, constants.OrderStatusConfirmed, transitions.OrderStatus)
	require.False(t, transitions.Terminal)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/orders/%d/status-history", order.ID), nil)
	require.Equal(t, 0, resp.StatusCode)
	var histories []models.OrderStatusHistory
	require.NoError(t, json.Unmarshal(resp.Data, &histories))
	require.NotEmpty(t, histories)
}

func TestOrderCancelRequiresReason(t *testing.T) {
	env := setupHandlerTest(t)
	resp := env.do(t, http.MethodPost, "/orders", gin.H{
		"status": constants.OrderStatusPendingConfirmation,
		"items":  []gin.H{{"product_id": env.product.ID, "quantity": 1, "unit_price": "5"}},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var order models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))

	resp = env.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": constants.OrderStatusCanceled})
	require.Equal(t, 400, resp.StatusCode)
}

func TestOrderNotFoundAndBadID(t *testing.T) {
	env := setupHandlerTest(t)
	resp := env.do(t, http.MethodGet, "/orders/9999", nil)
	require.Equal(t, 404, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/orders/abc", nil)
	require.Equal(t, 400, resp.StatusCode)
}
