package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/app"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/services"

	"github.com/gin-gonic/gin"
)

type AssetController struct{ *Srv }

func NewAssetController(s *Srv) *AssetController { return &AssetController{Srv: s} }

func parseAll[S any](vals []string, parse func(string) (S, error)) ([]S, error) {
	out := make([]S, 0, len(vals))
	for _, v := range vals {
		s, err := parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Invalid("invalid id %q", s)
	}
	return uint(n), nil
}

type assetBody struct {
	Name          string `json:"name" binding:"required"`
	CategoryID    uint   `json:"categoryId"`
	Specification string `json:"specification"`
	InstalledDate string `json:"installedDate"`
	State         string `json:"state"`
}

func (b assetBody) parse() (lifecycle.AssetState, error) {
	if b.State == "" {
		return "", nil
	}
	return lifecycle.ParseAssetState(b.State)
}

// GET /api/assets?q=&states=Available,Assigned&categories=1,2&sort=name&desc=true&page=&size=
func (ac *AssetController) List(c *gin.Context) {
	states, err := parseAll(csv(c, "states"), lifecycle.ParseAssetState)
	if err != nil {
		app.Fail(c, err)
		return
	}
	cats, err := parseAll(csv(c, "categories"), parseID)
	if err != nil {
		app.Fail(c, err)
		return
	}
	page, size := pageParams(c)
	desc, _ := strconv.ParseBool(c.DefaultQuery("desc", "false"))
	res, err := ac.Svc.Assets.List(c.Request.Context(), caller(c), db.AssetsQuery{
		Q:           c.Query("q"),
		States:      states,
		CategoryIDs: cats,
		Sort:        c.Query("sort"),
		Desc:        desc,
		Page:        page,
		Size:        size,
	})
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ac *AssetController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := ac.Svc.Assets.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AssetController) Create(c *gin.Context) {
	var in assetBody
	if !bind(c, &in) {
		return
	}
	state, err := in.parse()
	if err != nil {
		app.Fail(c, err)
		return
	}
	installed, err := parseDate(in.InstalledDate)
	if err != nil {
		app.Fail(c, err)
		return
	}
	a, err := ac.Svc.Assets.Create(c.Request.Context(), caller(c), services.CreateAssetInput{
		Name:          in.Name,
		CategoryID:    in.CategoryID,
		Specification: in.Specification,
		InstalledDate: installed,
		State:         state,
	})
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (ac *AssetController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in assetBody
	if !bind(c, &in) {
		return
	}
	state, err := in.parse()
	if err != nil {
		app.Fail(c, err)
		return
	}
	installed, err := parseDate(in.InstalledDate)
	if err != nil {
		app.Fail(c, err)
		return
	}
	a, err := ac.Svc.Assets.Update(c.Request.Context(), caller(c), id, services.UpdateAssetInput{
		Name:          in.Name,
		Specification: in.Specification,
		InstalledDate: installed,
		State:         state,
	})
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AssetController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ac.Svc.Assets.Delete(c.Request.Context(), caller(c), id); err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ac *AssetController) History(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rows, err := ac.Svc.Assets.History(c.Request.Context(), caller(c), id)
	if err != nil {
		app.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"history": rows})
}
