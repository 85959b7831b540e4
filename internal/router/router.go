package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cangchu-next/internal/authz"
	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/config"
	adminhandlers "github.com/cangchu-next/internal/http/handlers/admin"
	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cc"
	}
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_write", redisPrefix),
		WindowSeconds: cfg.Security.AdminRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AdminRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		admin.Use(
			AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo),
			AdminRBACMiddleware(c.AuthzService),
			WriteMethodsOnly(RateLimitMiddleware(cache.Client(), writeRule, KeyByAdmin)),
		)
		{
			// 仓库与库位
			admin.GET("/warehouses", adminHandler.ListWarehouses)
			admin.POST("/warehouses", adminHandler.CreateWarehouse)
			admin.PUT("/warehouses/:id/default", adminHandler.SetDefaultWarehouse)
			admin.DELETE("/warehouses/:id", adminHandler.DeactivateWarehouse)
			admin.GET("/warehouses/:id/locations", adminHandler.ListWarehouseLocations)
			admin.POST("/warehouses/:id/locations", adminHandler.CreateWarehouseLocation)
			admin.PUT("/warehouses/:id/locations/:location_id/default", adminHandler.SetDefaultWarehouseLocation)

			// 库存余额与流水
			admin.GET("/inventory", adminHandler.ListInventory)
			admin.PUT("/inventory/:id/reorder-point", adminHandler.UpdateReorderPoint)
			admin.GET("/inventory/products/:product_id/summary", adminHandler.GetProductStockSummary)
			admin.GET("/stock-movements", adminHandler.ListStockMovements)

			// 库存单据
			admin.GET("/stock-documents", adminHandler.ListStockDocuments)
			admin.POST("/stock-documents", adminHandler.CreateStockDocument)
			admin.GET("/stock-documents/:id", adminHandler.GetStockDocument)
			admin.PUT("/stock-documents/:id", adminHandler.UpdateStockDocument)
			admin.POST("/stock-documents/:id/post", adminHandler.PostStockDocument)
			admin.POST("/stock-documents/:id/void", adminHandler.VoidStockDocument)
			admin.GET("/stock-documents/:id/movements", adminHandler.ListStockDocumentMovements)

			// 订单
			admin.GET("/orders", adminHandler.ListOrders)
			admin.POST("/orders", adminHandler.CreateOrder)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
			admin.GET("/orders/:id/status-history", adminHandler.ListOrderStatusHistory)
			admin.GET("/orders/:id/transitions", adminHandler.GetOrderTransitions)

			// 收付款与财务
			admin.GET("/orders/:id/payments", adminHandler.ListOrderPayments)
			admin.POST("/orders/:id/payments", adminHandler.RecordOrderPayment)
			admin.POST("/orders/:id/finance/recalc", adminHandler.RecalcOrderFinance)

			// 权限
			admin.GET("/authz/me", adminHandler.GetAuthzMe)
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由生成可授权的权限清单
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	switch segments[1] {
	case "stock-movements", "inventory":
		return "inventory"
	}
	return segments[1]
}
