package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}

	dg := g.Group("/dashboard")
	dg.GET("/stats", api.stats)
	dg.GET("/recent-activities", api.recentActivities)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "retrieving dashboard statistics")
	}
	return ok(ctx, http.StatusOK, "Dashboard statistics retrieved successfully", stats)
}

func (api *dashboardApi) recentActivities(ctx echo.Context) error {
	activities, err := api.svc.RecentActivities(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "retrieving recent activities")
	}
	return ok(ctx, http.StatusOK, "Recent activities retrieved successfully", activities)
}
