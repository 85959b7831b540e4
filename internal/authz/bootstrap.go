package authz

import "fmt"

// 内置角色名
const (
	RoleReadonlyAuditor = "readonly_auditor"
	RoleWarehouseClerk  = "warehouse_clerk"
	RoleOrderOperator   = "order_operator"
	RoleFinance         = "finance"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 仓储后台预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleReadonlyAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleWarehouseClerk,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/warehouses", Action: "POST"},
				{Object: "/admin/warehouses/:id/default", Action: "PUT"},
				{Object: "/admin/warehouses/:id", Action: "DELETE"},
				{Object: "/admin/warehouses/:id/locations", Action: "POST"},
				{Object: "/admin/warehouses/:id/locations/:location_id/default", Action: "PUT"},
				{Object: "/admin/inventory/:id/reorder-point", Action: "PUT"},
				{Object: "/admin/stock-documents", Action: "POST"},
				{Object: "/admin/stock-documents/:id", Action: "PUT"},
				{Object: "/admin/stock-documents/:id/post", Action: "POST"},
				{Object: "/admin/stock-documents/:id/void", Action: "POST"},
			},
		},
		{
			Role:     RoleOrderOperator,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/orders", Action: "POST"},
				{Object: "/admin/orders/:id/status", Action: "PATCH"},
			},
		},
		{
			Role:     RoleFinance,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/orders/:id/payments", Action: "POST"},
				{Object: "/admin/orders/:id/finance/recalc", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role %s -> %s failed: %w", role, parentRole, err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("seed policy for %s failed: %w", role, err)
			}
		}
	}
	return nil
}
