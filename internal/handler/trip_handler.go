package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/transreserve/trip-reservations/internal/dto"
	"github.com/transreserve/trip-reservations/internal/service"
)

type TripHandler struct {
	svc service.AvailabilityService
}

func NewTripHandler(svc service.AvailabilityService) *TripHandler {
	return &TripHandler{svc: svc}
}

func (h *TripHandler) RegisterRoutes(e *echo.Echo, dev bool) {
	trips := e.Group("/api/v1/trips")
	trips.GET("", h.ListTrips)
	trips.GET("/watch", h.WatchTrips)
	if dev {
		trips.POST("/seed", h.SeedTrip)
	}
}

func (h *TripHandler) ListTrips(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.ToTripListResponse(h.svc.Trips(), h.svc.Loading()))
}

// WatchTrips streams full trip-list snapshots as server-sent events. The
// subscription is torn down when the client disconnects.
func (h *TripHandler) WatchTrips(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	snapshots := h.svc.Subscribe(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, ok := <-snapshots:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(dto.ToTripListResponse(snapshot, false))
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", payload); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}

// SeedTrip creates a development trip. Failures are logged by the service
// and never surfaced, so the response is always 202.
func (h *TripHandler) SeedTrip(c echo.Context) error {
	h.svc.SeedTrip(c.Request().Context())
	return c.NoContent(http.StatusAccepted)
}
