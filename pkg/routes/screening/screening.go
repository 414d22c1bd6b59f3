// Package screening exposes the one-to-one screening endpoint. A query
// profile is scored against a single counterpart, either inlined in the
// request or referenced by source and source id.
package screening

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/pkg/models"
	searchpkg "github.com/Ramsey-B/briar/pkg/search"
)

var validate = validator.New()

// Register registers screening routes
func Register(g *echo.Group) {
	g.POST("", Screen)
}

// ScreenRequest is the request body for a one-to-one screen
type ScreenRequest struct {
	Query    *models.Entity    `json:"query" validate:"required"`
	Index    *models.Entity    `json:"index,omitempty"`
	Source   models.SourceList `json:"source,omitempty"`
	SourceID string            `json:"sourceId,omitempty"`
	MinMatch float64           `json:"minMatch,omitempty" validate:"gte=0,lte=1"`
	Debug    bool              `json:"debug,omitempty"`
}

// Screen scores a query entity against one counterpart
func Screen(c echo.Context) error {
	ctx := c.Request().Context()

	var req ScreenRequest
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

	result, err := service.Screen(ctx, searchpkg.ScreenRequest{
		Query:    req.Query,
		Index:    req.Index,
		Source:   req.Source,
		SourceID: req.SourceID,
		MinMatch: req.MinMatch,
		Debug:    req.Debug,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
