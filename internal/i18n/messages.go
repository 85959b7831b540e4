package i18n

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":                      "请求参数错误",
		"error.validation_failed":                "参数校验失败：%s",
		"error.not_found":                        "资源不存在",
		"error.unauthorized":                     "未授权",
		"error.forbidden":                        "无权限访问",
		"error.jwt_secret_missing":               "服务端未配置 JWT 密钥",
		"error.auth_header_missing":              "缺少 Authorization 请求头",
		"error.auth_header_invalid":              "Authorization 格式错误",
		"error.token_invalid":                    "Token 无效或已过期",
		"error.token_revoked":                    "Token 已失效，请重新登录",
		"error.rate_limit_unavailable":           "限流服务不可用，请稍后重试",
		"error.rate_limited":                     "操作过于频繁，请 %d 秒后重试",
		"error.admin_id_invalid":                 "操作员 ID 无效",
		"error.admin_not_found":                  "操作员不存在",
		"error.authz_fetch_failed":               "获取权限信息失败",
		"error.authz_save_failed":                "保存权限信息失败",
		"error.warehouse_id_invalid":             "仓库 ID 无效",
		"error.warehouse_not_found":              "仓库不存在",
		"error.warehouse_fetch_failed":           "获取仓库失败",
		"error.warehouse_save_failed":            "保存仓库失败",
		"error.location_id_invalid":              "库位 ID 无效",
		"error.location_not_found":               "库位不存在",
		"error.product_id_invalid":               "商品 ID 无效",
		"error.product_not_found":                "商品不存在",
		"error.inventory_item_id_invalid":        "库存记录 ID 无效",
		"error.inventory_item_not_found":         "库存记录不存在",
		"error.inventory_fetch_failed":           "获取库存失败",
		"error.inventory_save_failed":            "保存库存设置失败",
		"error.stock_insufficient":               "可用库存不足",
		"error.stock_document_id_invalid":        "库存单据 ID 无效",
		"error.stock_document_not_found":         "库存单据不存在",
		"error.stock_document_fetch_failed":      "获取库存单据失败",
		"error.stock_document_save_failed":       "保存库存单据失败",
		"error.stock_document_post_failed":       "库存单据过账失败",
		"error.stock_document_void_failed":       "库存单据作废失败",
		"error.stock_document_already_posted":    "库存单据已过账，不能修改",
		"error.stock_document_already_void":      "库存单据已作废",
		"error.stock_posting_duplicate":          "单据流水已由其他单据过账",
		"error.order_id_invalid":                 "订单 ID 无效",
		"error.order_not_found":                  "订单不存在",
		"error.order_status_invalid":             "订单状态无效",
		"error.order_fetch_failed":               "获取订单失败",
		"error.order_create_failed":              "创建订单失败",
		"error.order_update_failed":              "更新订单状态失败",
		"error.order_transition_invalid":         "订单状态不能从 %s 变更为 %s",
		"error.order_transition_invalid_generic": "订单状态变更不合法",
		"error.cancel_reason_required":           "取消订单需要填写原因",
		"error.order_finance_recalc_failed":      "订单财务重算失败",
		"error.payment_fetch_failed":             "获取收付款记录失败",
		"error.payment_save_failed":              "保存收付款记录失败",
	},
	LocaleEnUS: {
		"error.bad_request":                      "Invalid request parameters",
		"error.validation_failed":                "Validation failed: %s",
		"error.not_found":                        "Resource not found",
		"error.unauthorized":                     "Unauthorized",
		"error.forbidden":                        "Permission denied",
		"error.jwt_secret_missing":               "JWT secret is not configured",
		"error.auth_header_missing":              "Missing Authorization header",
		"error.auth_header_invalid":              "Malformed Authorization header",
		"error.token_invalid":                    "Token is invalid or expired",
		"error.token_revoked":                    "Token has been revoked, please sign in again",
		"error.rate_limit_unavailable":           "Rate limiter unavailable, please retry later",
		"error.rate_limited":                     "Too many requests, retry in %d seconds",
		"error.admin_id_invalid":                 "Invalid operator ID",
		"error.admin_not_found":                  "Operator not found",
		"error.authz_fetch_failed":               "Failed to load permissions",
		"error.authz_save_failed":                "Failed to save permissions",
		"error.warehouse_id_invalid":             "Invalid warehouse ID",
		"error.warehouse_not_found":              "Warehouse not found",
		"error.warehouse_fetch_failed":           "Failed to load warehouses",
		"error.warehouse_save_failed":            "Failed to save warehouse",
		"error.location_id_invalid":              "Invalid location ID",
		"error.location_not_found":               "Location not found",
		"error.product_id_invalid":               "Invalid product ID",
		"error.product_not_found":                "Product not found",
		"error.inventory_item_id_invalid":        "Invalid inventory item ID",
		"error.inventory_item_not_found":         "Inventory item not found",
		"error.inventory_fetch_failed":           "Failed to load inventory",
		"error.inventory_save_failed":            "Failed to save inventory settings",
		"error.stock_insufficient":               "Insufficient available stock",
		"error.stock_document_id_invalid":        "Invalid stock document ID",
		"error.stock_document_not_found":         "Stock document not found",
		"error.stock_document_fetch_failed":      "Failed to load stock documents",
		"error.stock_document_save_failed":       "Failed to save stock document",
		"error.stock_document_post_failed":       "Failed to post stock document",
		"error.stock_document_void_failed":       "Failed to void stock document",
		"error.stock_document_already_posted":    "Stock document is already posted",
		"error.stock_document_already_void":      "Stock document is already void",
		"error.stock_posting_duplicate":          "Stock movements were already posted by another document",
		"error.order_id_invalid":                 "Invalid order ID",
		"error.order_not_found":                  "Order not found",
		"error.order_status_invalid":             "Invalid order status",
		"error.order_fetch_failed":               "Failed to load orders",
		"error.order_create_failed":              "Failed to create order",
		"error.order_update_failed":              "Failed to update order status",
		"error.order_transition_invalid":         "Order cannot move from %s to %s",
		"error.order_transition_invalid_generic": "Invalid order status transition",
		"error.cancel_reason_required":           "A cancel reason is required",
		"error.order_finance_recalc_failed":      "Failed to recalculate order finance",
		"error.payment_fetch_failed":             "Failed to load payments",
		"error.payment_save_failed":              "Failed to save payment",
	},
}
