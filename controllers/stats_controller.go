package controllers

import (
	"net/http"

	"dorm-backend/services"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	Stats *services.StatsService
}

func NewStatsController(svc *services.StatsService) *StatsController {
	return &StatsController{Stats: svc}
}

func (ctrl *StatsController) Overview(c *gin.Context) {
	stats, err := ctrl.Stats.Overview()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ctrl *StatsController) TopDebtors(c *gin.Context) {
	rows, err := ctrl.Stats.TopDebtors(queryInt(c, "limit", 10))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (ctrl *StatsController) Floors(c *gin.Context) {
	rows, err := ctrl.Stats.FloorOccupancy()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
