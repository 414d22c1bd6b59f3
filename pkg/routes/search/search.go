// Package search exposes the screening query endpoint. GET serves the common
// name lookup; POST takes a full entity profile so identifiers, addresses
// and dates can contribute evidence.
package search

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/pkg/models"
	searchpkg "github.com/Ramsey-B/briar/pkg/search"
)

var validate = validator.New()

// Register registers search routes
func Register(g *echo.Group) {
	g.GET("", SearchByName)
	g.POST("", SearchByEntity)
}

// SearchByName screens a name from query parameters against the index
func SearchByName(c echo.Context) error {
	ctx := c.Request().Context()

	name := c.QueryParam("name")
	if name == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}

	query := searchpkg.Query{
		Name:       name,
		Source:     models.SourceList(c.QueryParam("source")),
		EntityType: models.EntityType(c.QueryParam("type")),
		Debug:      parseBool(c.QueryParam("trace")),
	}

	var err error
	if query.MinMatch, err = parseFloatParam(c.QueryParam("minMatch")); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "minMatch must be a number between 0 and 1")
	}
	if query.Limit, err = parseIntParam(c.QueryParam("limit")); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
	}

	ctx, service, err := ectoinject.GetContext[*searchpkg.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	resp, err := service.Search(ctx, query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// SearchByEntityRequest is the request body for a full-profile search
type SearchByEntityRequest struct {
	Entity     *models.Entity    `json:"entity" validate:"required"`
	Source     models.SourceList `json:"source,omitempty"`
	EntityType models.EntityType `json:"entityType,omitempty"`
	MinMatch   float64           `json:"minMatch,omitempty" validate:"gte=0,lte=1"`
	Limit      int               `json:"limit,omitempty" validate:"gte=0"`
	Debug      bool              `json:"debug,omitempty"`
}

// SearchByEntity screens a full entity profile against the index
func SearchByEntity(c echo.Context) error {
	ctx := c.Request().Context()

	var req SearchByEntityRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, service, err := ectoinject.GetContext[*searchpkg.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	resp, err := service.Search(ctx, searchpkg.Query{
		Entity:     req.Entity,
		Source:     req.Source,
		EntityType: req.EntityType,
		MinMatch:   req.MinMatch,
		Limit:      req.Limit,
		Debug:      req.Debug,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func parseFloatParam(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, echo.ErrBadRequest
	}
	return v, nil
}

func parseIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, echo.ErrBadRequest
	}
	return v, nil
}

func parseBool(raw string) bool {
	return raw == "true" || raw == "1"
}
