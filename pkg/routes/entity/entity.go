// Package entity exposes read access to the indexed sanctions lists: per-list
// census, single-entry lookup, graph-derived related entities, and the
// screening hits recorded against an entry.
package entity

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/internal/repositories/listentity"
	"github.com/Ramsey-B/briar/internal/repositories/screeninghit"
	graphpkg "github.com/Ramsey-B/briar/pkg/graph"
	"github.com/Ramsey-B/briar/pkg/index"
	"github.com/Ramsey-B/briar/pkg/models"
)

// Register registers entity routes
func Register(g *echo.Group) {
	g.GET("/info", GetListInfo)
	g.GET("/:source/:sourceId", GetEntity)
	g.GET("/:source/:sourceId/related", GetRelatedEntities)
	g.GET("/:source/:sourceId/hits", GetEntityHits)
}

// ListInfo reports what the service is currently screening against
type ListInfo struct {
	Sources []listentity.SourceCount `json:"sources"`
	Indexed int                      `json:"indexed"`
}

// GetListInfo returns per-list entry counts and the in-memory index size.
// The two can differ briefly while an index rebuild is in flight, and the
// index is smaller whenever cross-list merging folded duplicates.
func GetListInfo(c echo.Context) error {
	ctx := c.Request().Context()

	ctx, repo, err := ectoinject.GetContext[*listentity.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	counts, err := repo.CountBySource(ctx)
	if err != nil {
		return err
	}

	info := ListInfo{Sources: counts}
	if _, idx, err := ectoinject.GetContext[*index.Index](ctx); err == nil && idx != nil {
		info.Indexed = idx.Size()
	}

	return c.JSON(http.StatusOK, info)
}

// EntityResponse is a single list entry with its storage metadata
type EntityResponse struct {
	Source    string         `json:"source"`
	SourceID  string         `json:"sourceId"`
	Entity    *models.Entity `json:"entity"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// GetEntity returns one list entry by its list identity
func GetEntity(c echo.Context) error {
	ctx := c.Request().Context()

	source := models.SourceList(c.Param("source"))
	sourceID := c.Param("sourceId")

	ctx, repo, err := ectoinject.GetContext[*listentity.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	row, err := repo.GetBySourceID(ctx, source, sourceID)
	if err != nil {
		return err
	}
	if row == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	entity, err := row.Entity()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, EntityResponse{
		Source:    row.Source,
		SourceID:  row.SourceID,
		Entity:    entity,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	})
}

// GetRelatedEntities returns list entries reachable from one entry through
// shared affiliations, ranked by affiliation overlap with the anchor
func GetRelatedEntities(c echo.Context) error {
	ctx := c.Request().Context()

	source := models.SourceList(c.Param("source"))
	sourceID := c.Param("sourceId")

	depth, err := parsePositiveInt(c.QueryParam("depth"), graphpkg.DefaultDepth)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "depth must be a positive integer")
	}
	limit, err := parsePositiveInt(c.QueryParam("limit"), 0)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
	}

	ctx, repo, err := ectoinject.GetContext[*listentity.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	row, err := repo.GetBySourceID(ctx, source, sourceID)
	if err != nil {
		return err
	}
	if row == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	ctx, mirror, err := ectoinject.GetContext[*graphpkg.Mirror](ctx)
	if err != nil || mirror == nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "graph service unavailable")
	}

	related, err := mirror.RelatedEntities(ctx, source, sourceID, depth, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"source":   source,
		"sourceId": sourceID,
		"depth":    depth,
		"related":  related,
	})
}

// GetEntityHits returns the screening hits recorded against one list entry,
// newest first
func GetEntityHits(c echo.Context) error {
	ctx := c.Request().Context()

	source := models.SourceList(c.Param("source"))
	sourceID := c.Param("sourceId")

	limit, err := parsePositiveInt(c.QueryParam("limit"), 0)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
	}

	ctx, repo, err := ectoinject.GetContext[*screeninghit.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	hits, err := repo.ListByEntity(ctx, source, sourceID, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, hits)
}

func parsePositiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, echo.ErrBadRequest
	}
	return v, nil
}
