package controllers

import (
	"net/http"

	"Gin_postgres_redis_asset_tool/app"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"

	"github.com/gin-gonic/gin"
)

type ReturningController struct{ *Srv }

func NewReturningController(s *Srv) *ReturningController { return &ReturningController{Srv: s} }

// GET /api/returning-requests?q=&states=WaitingForReturning&page=&size=
func (rc *ReturningController) List(c *gin.Context) {
	states, err := parseAll(csv(c, "states"), lifecycle.ParseReturningState)
	if err != nil {
		app.Fail(c, err)
		return
	}
	page, size := pageParams(c)
	res, err := rc.Svc.Returning.List(c.Request.Context(), caller(c), db.ReturningQuery{
		Q:      c.Query("q"),
		States: states,
		Page:   page,
		Size:   size,
	})
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (rc *ReturningController) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rr, err := rc.Svc.Returning.Complete(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (rc *ReturningController) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.Svc.Returning.Cancel(c.Request.Context(), caller(c), id); err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
