package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"optivus-service/internal/services"
	"optivus-service/pkg/common"
)

// maxTreeDepth caps how far down a single team or downline request may
// traverse, so one call cannot walk an arbitrarily deep forest.
const maxTreeDepth = 50

type DashboardHandler struct {
	Dashboard *services.DashboardService
	TierDepth int
}

// NewDashboardHandler takes the commission tier depth as the default
// traversal depth; requests can go deeper up to maxTreeDepth.
func NewDashboardHandler(dashboard *services.DashboardService, tierDepth int) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard, TierDepth: tierDepth}
}

func (h *DashboardHandler) treeDepth(c *gin.Context) int {
	depth, err := strconv.Atoi(c.DefaultQuery("depth", strconv.Itoa(h.TierDepth)))
	if err != nil || depth < 1 {
		return h.TierDepth
	}
	if depth > maxTreeDepth {
		return maxTreeDepth
	}
	return depth
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.Dashboard.Stats(accountIdFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(stats, "Dashboard fetched"))
}

func (h *DashboardHandler) Team(c *gin.Context) {
	tree, err := h.Dashboard.Team(accountIdFrom(c), h.treeDepth(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(tree, "Team fetched"))
}

func (h *DashboardHandler) Downline(c *gin.Context) {
	levels, err := h.Dashboard.Downline(accountIdFrom(c), h.treeDepth(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(levels, "Downline fetched"))
}

func (h *DashboardHandler) Transactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Dashboard.Transactions(accountIdFrom(c), page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
