package controllers

import (
	"net/http"
	"time"

	"Gin_postgres_redis_asset_tool/app"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/services"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct{ *Srv }

func NewAssignmentController(s *Srv) *AssignmentController { return &AssignmentController{Srv: s} }

type assignmentBody struct {
	UserID       uint   `json:"userId" binding:"required"`
	AssetID      uint   `json:"assetId" binding:"required"`
	AssignedDate string `json:"assignedDate"`
	Note         string `json:"note"`
}

func (b assignmentBody) input() (services.AssignmentInput, error) {
	date, err := parseDate(b.AssignedDate)
	if err != nil {
		return services.AssignmentInput{}, err
	}
	return services.AssignmentInput{
		UserID:       b.UserID,
		AssetID:      b.AssetID,
		AssignedDate: date,
		Note:         b.Note,
	}, nil
}

// GET /api/assignments?q=&states=&from=2024-01-01&to=2024-12-31&page=&size=
func (ac *AssignmentController) List(c *gin.Context) {
	states, err := parseAll(csv(c, "states"), lifecycle.ParseAssignmentState)
	if err != nil {
		app.Fail(c, err)
		return
	}
	q := db.AssignmentsQuery{Q: c.Query("q"), States: states}
	q.Page, q.Size = pageParams(c)
	if q.From, err = optDate(c.Query("from")); err != nil {
		app.Fail(c, err)
		return
	}
	if q.To, err = optDate(c.Query("to")); err != nil {
		app.Fail(c, err)
		return
	}
	res, err := ac.Svc.Assignments.List(c.Request.Context(), caller(c), q)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func optDate(s string) (*time.Time, error) {
	t, err := parseDate(s)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

func (ac *AssignmentController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := ac.Svc.Assignments.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AssignmentController) Create(c *gin.Context) {
	var body assignmentBody
	if !bind(c, &body) {
		return
	}
	in, err := body.input()
	if err != nil {
		app.Fail(c, err)
		return
	}
	a, err := ac.Svc.Assignments.Create(c.Request.Context(), caller(c), in)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (ac *AssignmentController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body assignmentBody
	if !bind(c, &body) {
		return
	}
	in, err := body.input()
	if err != nil {
		app.Fail(c, err)
		return
	}
	a, err := ac.Svc.Assignments.Update(c.Request.Context(), caller(c), id, in)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AssignmentController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ac.Svc.Assignments.Delete(c.Request.Context(), caller(c), id); err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/assignments/:id/returning-request (管理员代为发起归还)
func (ac *AssignmentController) RequestReturn(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rr, err := ac.Svc.Returning.CreateByAdmin(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rr)
}

// --- 当前用户 ---

// GET /api/me/assignments
func (ac *AssignmentController) ListMine(c *gin.Context) {
	page, size := pageParams(c)
	res, err := ac.Svc.Assignments.ListMine(c.Request.Context(), caller(c), page, size)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ac *AssignmentController) Accept(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := ac.Svc.Assignments.Accept(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AssignmentController) Decline(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := ac.Svc.Assignments.Decline(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AssignmentController) Return(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rr, err := ac.Svc.Assignments.CreateReturningRequest(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rr)
}
