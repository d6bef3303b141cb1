package controllers

import (
	"net/http"

	"Gin_postgres_redis_asset_tool/app"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/models"
	"Gin_postgres_redis_asset_tool/services"

	"github.com/gin-gonic/gin"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&type=Staff&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	page, size := pageParams(c)
	res, err := uc.Svc.Users.List(c.Request.Context(), caller(c), db.UsersQuery{
		Q:    c.Query("q"),
		Type: models.UserType(c.Query("type")),
		Page: page,
		Size: size,
	})
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := uc.Svc.Users.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// POST /api/users
func (uc *UserController) CreateUser(c *gin.Context) {
	var in struct {
		FirstName  string `json:"firstName" binding:"required"`
		LastName   string `json:"lastName" binding:"required"`
		Type       string `json:"type"`
		JoinedDate string `json:"joinedDate"`
	}
	if !bind(c, &in) {
		return
	}
	joined, err := parseDate(in.JoinedDate)
	if err != nil {
		app.Fail(c, err)
		return
	}
	out, err := uc.Svc.Users.Create(c.Request.Context(), caller(c), services.CreateUserInput{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Type:       models.UserType(in.Type),
		JoinedDate: joined,
	})
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// POST /api/users/:id/disable
func (uc *UserController) DisableUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := uc.Svc.Users.Disable(c.Request.Context(), caller(c), id); err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
