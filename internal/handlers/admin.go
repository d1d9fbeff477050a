// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/machinery-catalog/internal/services"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

const defaultAdminPageSize = 20

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "stats")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/issues
func (h *AdminHandler) GetIssues(c *gin.Context) {
	params := utils.GetPaginationParams(c, defaultAdminPageSize)

	issues, total, err := h.adminService.ListIssues(c.Request.Context(), queryBool(c, "resolved"), params)
	if err != nil {
		respondError(c, err, "issue")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(issues, total, params))
}

// POST /admin/issues/:id/resolve
func (h *AdminHandler) ResolveIssue(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.ResolveIssue(c.Request.Context(), id); err != nil {
		respondError(c, err, "issue")
		return
	}

	utils.SuccessResponse(c, gin.H{"id": id, "resolved": true})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c, defaultAdminPageSize)

	logs, total, err := h.adminService.ListAuditLogs(c.Request.Context(), c.Query("resource_type"), params)
	if err != nil {
		respondError(c, err, "issue")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
