package main

import (
	"fmt"
	"os"

	"github.com/cangchu-next/internal/authz"
	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"
)

const seedReferenceType = "seed"

type seedProduct struct {
	SKU        string
	Name       string
	OpeningQty int
}

var sampleProducts = []seedProduct{
	{SKU: "CC-EARPHONE-01", Name: "无线蓝牙耳机", OpeningQty: 120},
	{SKU: "CC-WATCH-01", Name: "智能手表", OpeningQty: 60},
	{SKU: "CC-POWERBANK-01", Name: "便携充电宝", OpeningQty: 200},
	{SKU: "CC-CABLE-01", Name: "Type-C 数据线", OpeningQty: 500},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 超级管理员
	admin, err := models.EnsureDefaultAdmin(os.Getenv("CC_DEFAULT_ADMIN_USERNAME"))
	if err != nil {
		stdLog.Fatalf("Failed to ensure default admin: %v", err)
	}

	// 预置角色
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}

	productRepo := repository.NewProductRepository(models.DB)
	warehouses := service.NewWarehouseService(repository.NewWarehouseRepository(models.DB), &cfg.Stock)
	documents := service.NewStockDocumentService(
		repository.NewStockDocumentRepository(models.DB),
		repository.NewStockLedgerRepository(models.DB),
		productRepo,
		warehouses,
	)

	warehouse, err := warehouses.DefaultWarehouse()
	if err != nil {
		stdLog.Fatalf("Failed to ensure default warehouse: %v", err)
	}
	stdLog.Printf("Default warehouse: %s (%d)", warehouse.Code, warehouse.ID)

	// 商品与期初入库
	for _, item := range sampleProducts {
		product, err := productRepo.GetBySKU(item.SKU)
		if err != nil {
			stdLog.Printf("Failed to load product %s: %v", item.SKU, err)
			continue
		}
		if product == nil {
			product = &models.Product{SKU: item.SKU, Name: item.Name, IsActive: true}
			if err := productRepo.Create(product); err != nil {
				stdLog.Printf("Failed to create product %s: %v", item.SKU, err)
				continue
			}
			stdLog.Printf("Created product: %s", item.SKU)
		}

		existing, err := documents.FindByReference(seedReferenceType, item.SKU, constants.StockDocTypeGRN)
		if err != nil {
			stdLog.Printf("Failed to check opening stock for %s: %v", item.SKU, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Opening stock already exists: %s", item.SKU)
			continue
		}
		document, err := documents.Create(service.CreateStockDocumentInput{
			Type:          constants.StockDocTypeGRN,
			WarehouseID:   warehouse.ID,
			ReferenceType: seedReferenceType,
			ReferenceID:   item.SKU,
			Note:          "期初库存",
			CreatedBy:     admin.ID,
			Lines:         []service.StockDocumentLineInput{{ProductID: product.ID, Quantity: item.OpeningQty}},
		})
		if err != nil {
			stdLog.Printf("Failed to create opening stock for %s: %v", item.SKU, err)
			continue
		}
		if _, err := documents.Post(document.ID, admin.ID); err != nil {
			stdLog.Printf("Failed to post opening stock for %s: %v", item.SKU, err)
			continue
		}
		stdLog.Printf("Posted opening stock: %s x%d", item.SKU, item.OpeningQty)
	}

	// 开发环境 Token
	token, expiresAt, err := service.NewAuthService(cfg).GenerateJWT(admin)
	if err != nil {
		stdLog.Fatalf("Failed to sign dev token: %v", err)
	}
	fmt.Printf("admin=%s id=%d expires=%s\n", admin.Username, admin.ID, expiresAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Authorization: Bearer %s\n", token)
}
