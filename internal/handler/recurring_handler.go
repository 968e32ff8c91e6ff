package handler

import (
	"net/http"
	"strconv"

	"invoicing/internal/middleware"
	"invoicing/internal/service"
	"invoicing/pkg/pagination"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

type RecurringHandler struct {
	recurringService service.RecurringService
}

func NewRecurringHandler(recurringService service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// RegisterRoutes mounts the template routes behind auth, which must resolve an access scope
func (h *RecurringHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	group := router.Group("/api/recurring-invoices")
	group.Use(auth)
	{
		group.GET("", h.ListTemplates)
		group.POST("", h.CreateTemplate)
		group.GET("/:id", h.GetTemplate)
		group.PUT("/:id", h.UpdateTemplate)
		group.DELETE("/:id", h.DeleteTemplate)
		group.PATCH("/:id/toggle", h.ToggleTemplate)
		group.POST("/:id/generate", h.GenerateNow)
	}
}

// ListTemplates returns the company's recurring templates, newest first
// @Summary      List recurring invoice templates
// @Description  Paginated templates with customer name and lines, optionally filtered by active state
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active (true) or inactive (false) templates"
// @Param        page    query     int   false  "Page number (default 1)"
// @Param        limit   query     int   false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Failure      401     {object}  response.Response
// @Router       /api/recurring-invoices [get]
func (h *RecurringHandler) ListTemplates(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.RecurringFilter{Page: p.Page, Limit: p.Limit}

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "active must be true or false"))
			return
		}
		filter.Active = &active
	}

	templates, total, err := h.recurringService.ListTemplates(c.Request.Context(), middleware.ScopeFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, templates, total, p.Page, p.Limit, p.TotalPages(total)))
}

// GetTemplate returns a template with its lines
// @Summary      Get recurring invoice template
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response{data=service.RecurringTemplateResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/recurring-invoices/{id} [get]
func (h *RecurringHandler) GetTemplate(c *gin.Context) {
	tmpl, err := h.recurringService.GetTemplate(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tmpl))
}

// CreateTemplate creates a recurring invoice template
// @Summary      Create recurring invoice template
// @Description  Superadmin only. The first issue date is computed from start_date.
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecurringTemplateRequest  true  "Template with lines"
// @Success      201      {object}  response.Response{data=service.RecurringTemplateResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/recurring-invoices [post]
func (h *RecurringHandler) CreateTemplate(c *gin.Context) {
	var req service.RecurringTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tmpl, err := h.recurringService.CreateTemplate(c.Request.Context(), middleware.ScopeFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tmpl))
}

// UpdateTemplate replaces header and lines of a template
// @Summary      Update recurring invoice template
// @Description  Superadmin only. All lines are replaced by the submitted set.
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Template ID"
// @Param        payload  body      service.RecurringTemplateRequest  true  "Template with lines"
// @Success      200      {object}  response.Response{data=service.RecurringTemplateResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/recurring-invoices/{id} [put]
func (h *RecurringHandler) UpdateTemplate(c *gin.Context) {
	var req service.RecurringTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tmpl, err := h.recurringService.UpdateTemplate(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tmpl))
}

// ToggleTemplate flips is_active
// @Summary      Toggle recurring invoice template
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response{data=service.RecurringTemplateResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/recurring-invoices/{id}/toggle [patch]
func (h *RecurringHandler) ToggleTemplate(c *gin.Context) {
	tmpl, err := h.recurringService.ToggleTemplate(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tmpl))
}

// DeleteTemplate removes a template that never produced an invoice
// @Summary      Delete recurring invoice template
// @Description  Templates with generated invoices answer 409; deactivate them instead.
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/recurring-invoices/{id} [delete]
func (h *RecurringHandler) DeleteTemplate(c *gin.Context) {
	if err := h.recurringService.DeleteTemplate(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "Recurring template deleted"}))
}

// GenerateNow creates a draft invoice from the template immediately
// @Summary      Generate invoice now
// @Description  Superadmin only. Leaves next_issue_date unchanged and stamps last_issued_at.
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      201  {object}  response.Response{data=service.DocumentResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/recurring-invoices/{id}/generate [post]
func (h *RecurringHandler) GenerateNow(c *gin.Context) {
	doc, err := h.recurringService.GenerateNow(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}
