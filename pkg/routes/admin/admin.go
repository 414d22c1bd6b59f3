// Package admin exposes operational endpoints: the effective scoring
// configuration, recent screening hits, a manual index rebuild, and the
// trace retention sweep.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/config"
	"github.com/Ramsey-B/briar/internal/repositories/scoringtrace"
	"github.com/Ramsey-B/briar/internal/repositories/screeninghit"
	"github.com/Ramsey-B/briar/pkg/processor"
	"github.com/Ramsey-B/briar/pkg/scoring"
	searchpkg "github.com/Ramsey-B/briar/pkg/search"
)

// Register registers admin routes
func Register(g *echo.Group) {
	g.GET("/config", GetConfig)
	g.GET("/hits", GetRecentHits)
	g.POST("/reindex", Reindex)
	g.DELETE("/traces", SweepTraces)
}

// GetConfig returns the effective search and scoring configuration
func GetConfig(c echo.Context) error {
	ctx := c.Request().Context()

	ctx, service, err := ectoinject.GetContext[*searchpkg.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}
	ctx, scorer, err := ectoinject.GetContext[*scoring.Scorer](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"search":  service.Config(),
		"scoring": scorer.Config(),
	})
}

// GetRecentHits returns the latest screening hits across all sessions
func GetRecentHits(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = v
	}

	ctx, repo, err := ectoinject.GetContext[*screeninghit.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	hits, err := repo.ListRecent(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, hits)
}

// Reindex rebuilds the in-memory index from persisted list entries. Normal
// operation never needs this; it exists for recovery after manual database
// surgery.
func Reindex(c echo.Context) error {
	ctx := c.Request().Context()

	ctx, proc, err := ectoinject.GetContext[*processor.Processor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	indexed, err := proc.ReloadIndex(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int{"indexed": indexed})
}

// SweepTraces deletes scoring traces older than the retention window. An
// olderThanDays query parameter overrides the configured window.
func SweepTraces(c echo.Context) error {
	ctx := c.Request().Context()

	ctx, cfg, err := ectoinject.GetContext[*config.Config](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	days := cfg.TraceRetentionDays
	if raw := c.QueryParam("olderThanDays"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return httperror.NewHTTPError(http.StatusBadRequest, "olderThanDays must be a positive integer")
		}
		days = v
	}

	ctx, repo, err := ectoinject.GetContext[*scoringtrace.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}
