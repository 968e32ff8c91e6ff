package handler

import (
	"net/http"
	"time"

	"invoicing/internal/middleware"
	"invoicing/internal/service"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

// CronHandler is the trigger endpoint of the daily recurring invoice sweep
type CronHandler struct {
	scheduler service.SchedulerService
}

func NewCronHandler(scheduler service.SchedulerService) *CronHandler {
	return &CronHandler{scheduler: scheduler}
}

func (h *CronHandler) RegisterRoutes(router *gin.RouterGroup, cronSecret string) {
	group := router.Group("/api/cron")
	group.Use(middleware.RequireCronSecret(cronSecret))
	{
		group.POST("/recurring-invoices", h.RunRecurringInvoices)
	}
}

// RunRecurringInvoices generates draft invoices for every due template
// @Summary      Run recurring invoices
// @Description  Called by an external scheduler with the cron secret. Returns the run summary.
// @Tags         cron
// @Security     CronSecret
// @Produce      json
// @Success      200  {object}  response.Response{data=service.RunSummary}
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/cron/recurring-invoices [post]
func (h *CronHandler) RunRecurringInvoices(c *gin.Context) {
	summary, err := h.scheduler.RunDue(c.Request.Context(), time.Time{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
