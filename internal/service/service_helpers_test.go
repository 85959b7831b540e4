package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db          *gorm.DB
	ledgerRepo  *repository.GormStockLedgerRepository
	warehouses  *WarehouseService
	documents   *StockDocumentService
	inventory   *InventoryService
	stockAction *StockActionService
	orders      *OrderService
	finance     *OrderFinanceService
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	models.DB = db

	stockCfg := &config.StockConfig{DefaultWarehouseCode: "MAIN", DefaultWarehouseName: "主仓"}
	warehouseRepo := repository.NewWarehouseRepository(db)
	ledgerRepo := repository.NewStockLedgerRepository(db)
	productRepo := repository.NewProductRepository(db)
	docRepo := repository.NewStockDocumentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	warehouses := NewWarehouseService(warehouseRepo, stockCfg)
	documents := NewStockDocumentService(docRepo, ledgerRepo, productRepo, warehouses)
	stockAction := NewStockActionService(orderRepo, documents, warehouses, nil)
	return &serviceFixture{
		db:          db,
		ledgerRepo:  ledgerRepo,
		warehouses:  warehouses,
		documents:   documents,
		inventory:   NewInventoryService(ledgerRepo, productRepo, stockCfg),
		stockAction: stockAction,
		orders:      NewOrderService(orderRepo, productRepo, stockAction, 3),
		finance:     NewOrderFinanceService(orderRepo, paymentRepo, nil),
	}
}

func (f *serviceFixture) createProduct(t *testing.T, sku string) *models.Product {
	t.Helper()
	product := &models.Product{SKU: sku, Name: "商品 " + sku, IsActive: true}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *serviceFixture) defaultWarehouse(t *testing.T) *models.Warehouse {
	t.Helper()
	warehouse, err := f.warehouses.DefaultWarehouse()
	require.NoError(t, err)
	return warehouse
}

func (f *serviceFixture) createWarehouse(t *testing.T, code string) *models.Warehouse {
	t.Helper()
	warehouse, err := f.warehouses.Create(CreateWarehouseInput{Code: code, Name: "仓库 " + code})
	require.NoError(t, err)
	return warehouse
}

// receive 入库并过账
func (f *serviceFixture) receive(t *testing.T, warehouseID, productID uint, qty int) *models.StockDocument {
	t.Helper()
	document, err := f.documents.Create(CreateStockDocumentInput{
		Type:        constants.StockDocTypeGRN,
		WarehouseID: warehouseID,
		Lines:       []StockDocumentLineInput{{ProductID: productID, Quantity: qty}},
	})
	require.NoError(t, err)
	posted, err := f.documents.Post(document.ID, 1)
	require.NoError(t, err)
	return posted
}

func (f *serviceFixture) item(t *testing.T, productID, warehouseID uint) *models.InventoryItem {
	t.Helper()
	item, err := f.ledgerRepo.GetItem(productID, warehouseID, nil)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func (f *serviceFixture) createOrder(t *testing.T, status string, productID uint, qty int) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(CreateOrderInput{
		Status: status,
		Items: []CreateOrderItemInput{{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: decimal.NewFromInt(10),
		}},
	})
	require.NoError(t, err)
	return order
}

func (f *serviceFixture) countMovements(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.StockMovement{}).Count(&count).Error)
	return count
}
