package controllers

import (
	"net/http"

	"Gin_postgres_redis_asset_tool/app"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	pair, err := ac.Svc.Auth.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// POST /api/auth/refresh
func (ac *AuthController) Refresh(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	pair, err := ac.Svc.Auth.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// POST /api/auth/logout，refreshToken 可选
func (ac *AuthController) Logout(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&in)
	if err := ac.Svc.Auth.Logout(c.Request.Context(), app.ClaimsFrom(c), in.RefreshToken); err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var in struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	if err := ac.Svc.Users.ChangePassword(c.Request.Context(), caller(c), in.OldPassword, in.NewPassword); err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
