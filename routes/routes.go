package routes

import (
	"net/http"

	"Gin_postgres_redis_asset_tool/app"
	"Gin_postgres_redis_asset_tool/controllers"
	"Gin_postgres_redis_asset_tool/metrics"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	uc := controllers.GetUserController(s)
	catCtl := controllers.NewCategoryController(s)
	assetCtl := controllers.NewAssetController(s)
	asgCtl := controllers.NewAssignmentController(s)
	retCtl := controllers.NewReturningController(s)
	repCtl := controllers.NewReportController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.Tokens, a.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, a.Config.LastSeenEvery)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ------------------------------
	// 登录（公开+受保护）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authCtl.Login)
		auth.POST("/refresh", authCtl.Refresh)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.POST("/change-password", authCtl.ChangePassword)
	}

	// 分类：所有登录用户可看，管理员可建
	cats := r.Group("/api/categories", authMW, seenMW)
	{
		cats.GET("", catCtl.List)
		cats.POST("", adminMW, catCtl.Create)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW, seenMW)
	{
		users.GET("", uc.ListUsers) // ?q=&type=&page=&size=
		users.POST("", uc.CreateUser)
		users.GET("/:id", uc.GetUser)
		users.POST("/:id/disable", uc.DisableUser)
	}

	// ------------------------------
	// 资产（仅管理员）
	// ------------------------------
	assets := r.Group("/api/assets", authMW, adminMW, seenMW)
	{
		assets.GET("", assetCtl.List)
		assets.POST("", assetCtl.Create)
		assets.GET("/:id", assetCtl.Get)
		assets.PUT("/:id", assetCtl.Update)
		assets.DELETE("/:id", assetCtl.Delete)
		assets.GET("/:id/history", assetCtl.History)
	}

	// 分配（仅管理员）
	assignments := r.Group("/api/assignments", authMW, adminMW, seenMW)
	{
		assignments.GET("", asgCtl.List)
		assignments.POST("", asgCtl.Create)
		assignments.GET("/:id", asgCtl.Get)
		assignments.PUT("/:id", asgCtl.Update)
		assignments.DELETE("/:id", asgCtl.Delete)
		assignments.POST("/:id/returning-request", asgCtl.RequestReturn)
	}

	// 当前用户：查看/接受/拒绝/申请归还
	me := r.Group("/api/me", authMW, seenMW)
	{
		me.GET("/assignments", asgCtl.ListMine)
		me.GET("/assignments/:id", asgCtl.Get)
		me.POST("/assignments/:id/accept", asgCtl.Accept)
		me.POST("/assignments/:id/decline", asgCtl.Decline)
		me.POST("/assignments/:id/return", asgCtl.Return)
	}

	// 归还申请（仅管理员）
	returning := r.Group("/api/returning-requests", authMW, adminMW, seenMW)
	{
		returning.GET("", retCtl.List)
		returning.POST("/:id/complete", retCtl.Complete)
		returning.DELETE("/:id", retCtl.Cancel)
	}

	reports := r.Group("/api/reports", authMW, adminMW, seenMW)
	{
		reports.GET("/summary", repCtl.Summary)
	}
}
