package admin

import (
	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type setAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

type authzRoleView struct {
	Role     string      `json:"role"`
	Policies interface{} `json:"policies"`
}

// GetAuthzMe 当前操作员的角色与生效策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	isSuper, _ := c.Get("admin_is_super")
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": isSuper == true,
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 角色列表（含直接策略）
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	views := make([]authzRoleView, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.GetRolePolicies(role)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
			return
		}
		views = append(views, authzRoleView{Role: role, Policies: policies})
	}
	response.Success(c, views)
}

// SetAdminRoles 覆盖设置操作员角色，并使其已签发 Token 失效
func (h *Handler) SetAdminRoles(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "error.admin_id_invalid")
	if !ok {
		return
	}
	var req setAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	admin, err := h.AdminRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_save_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.authz_save_failed", err)
		return
	}
	if err := h.AdminRepo.BumpTokenVersion(id); err != nil {
		respondError(c, response.CodeInternal, "error.authz_save_failed", err)
		return
	}
	if err := cache.DelAdminAuthState(c.Request.Context(), id); err != nil {
		requestLog(c).Warnw("admin_auth_state_invalidate_failed", "admin_id", id, "error", err)
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	requestLog(c).Infow("admin_roles_updated", "operator_id", operatorID, "admin_id", id, "roles", roles)
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}
