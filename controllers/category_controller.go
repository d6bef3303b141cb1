package controllers

import (
	"net/http"

	"Gin_postgres_redis_asset_tool/app"

	"github.com/gin-gonic/gin"
)

type CategoryController struct{ *Srv }

func NewCategoryController(s *Srv) *CategoryController { return &CategoryController{Srv: s} }

func (cc *CategoryController) List(c *gin.Context) {
	cs, err := cc.Svc.Categories.List(c.Request.Context(), caller(c))
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": cs})
}

func (cc *CategoryController) Create(c *gin.Context) {
	var in struct {
		Name   string `json:"name" binding:"required"`
		Prefix string `json:"prefix" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	cat, err := cc.Svc.Categories.Create(c.Request.Context(), caller(c), in.Name, in.Prefix)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}
