package controllers

import (
	"net/http"

	"Gin_postgres_redis_asset_tool/app"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

func (rc *ReportController) Summary(c *gin.Context) {
	rows, err := rc.Svc.Reports.Summary(c.Request.Context(), caller(c))
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": rows})
}
