package handler

import (
	"net/http"
	"strconv"
	"time"

	"invoicing/internal/schedule"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultPreviewCount = 3
	maxPreviewCount     = 24
)

// ScheduleHandler answers "when would this template be issued" without storing anything
type ScheduleHandler struct {
	location *time.Location
	now      func() time.Time
}

func NewScheduleHandler(location *time.Location) *ScheduleHandler {
	if location == nil {
		location = time.UTC
	}
	return &ScheduleHandler{location: location, now: time.Now}
}

func (h *ScheduleHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	group := router.Group("/api/schedule")
	group.Use(auth)
	{
		group.GET("/preview", h.Preview)
	}
}

type previewResponse struct {
	Frequency string   `json:"frequency"`
	Anchor    string   `json:"anchor"`
	Today     string   `json:"today"`
	Dates     []string `json:"dates"`
}

// Preview lists upcoming issue dates
// @Summary      Preview issue dates
// @Description  Next issue dates after today for a frequency and anchor date
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        frequency     query     string  true   "weekly, biweekly, monthly, quarterly or yearly"
// @Param        anchor        query     string  true   "Anchor date (YYYY-MM-DD)"
// @Param        day_of_month  query     int     false  "Day of month for month-based frequencies"
// @Param        count         query     int     false  "Number of dates (default 3, max 24)"
// @Success      200           {object}  response.Response{data=object}
// @Failure      400           {object}  response.Response
// @Router       /api/schedule/preview [get]
func (h *ScheduleHandler) Preview(c *gin.Context) {
	freq, err := schedule.ParseFrequency(c.Query("frequency"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	anchor, err := schedule.ParseDate(c.Query("anchor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "anchor must be a date in format YYYY-MM-DD"))
		return
	}

	var dayOfMonth *int
	if raw := c.Query("day_of_month"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 1 || day > 31 || !freq.MonthBased() {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "day_of_month must be 1-31 and is only allowed for month-based frequencies"))
			return
		}
		dayOfMonth = &day
	}

	count := defaultPreviewCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "count must be a positive number"))
			return
		}
		count = min(n, maxPreviewCount)
	}

	today := schedule.Today(h.now(), h.location)
	dates, err := schedule.Preview(freq, anchor, today, dayOfMonth, count)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	res := previewResponse{
		Frequency: string(freq),
		Anchor:    anchor.Format(schedule.DateLayout),
		Today:     today.Format(schedule.DateLayout),
		Dates:     make([]string, 0, len(dates)),
	}
	for _, d := range dates {
		res.Dates = append(res.Dates, d.Format(schedule.DateLayout))
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
