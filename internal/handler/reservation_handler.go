package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/transreserve/trip-reservations/internal/dto"
	"github.com/transreserve/trip-reservations/internal/models"
	"github.com/transreserve/trip-reservations/internal/service"
)

// User-facing banner text for a failed checkout. Deliberately generic: the
// workflow does not report which step failed.
const reservationFailedMessage = "Failed to create reservation. Please try again."

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo, middlewares ...echo.MiddlewareFunc) {
	reservations := e.Group("/api/v1/reservations", middlewares...)
	reservations.POST("", h.CreateReservation)
	reservations.GET("", h.ListReservations)
	reservations.PATCH("/:id/status", h.UpdateStatus)
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reservation, err := h.svc.CreateReservation(c.Request().Context(), req.Selections)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, reservationFailedMessage)
	}
	if reservation == nil {
		// Nothing selected: no-op by design.
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusCreated, dto.CreateReservationResponse{
		ReservationID: reservation.ID,
		Message:       "Your reservation (ID: " + reservation.ID + ") has been created successfully.",
	})
}

func (h *ReservationHandler) ListReservations(c echo.Context) error {
	ctx := c.Request().Context()

	reservations, err := h.svc.ListReservations(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	details := h.svc.ResolveDetails(ctx, reservations)

	resp := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		var d *service.ReservationDetails
		if detail, ok := details[reservations[i].ID]; ok {
			detail := detail
			d = &detail
		}
		resp[i] = dto.ToReservationResponse(&reservations[i], d)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id := c.Param("id")

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	status := models.ReservationStatus(req.Status)
	if !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	reservation, err := h.svc.UpdateStatus(c.Request().Context(), id, status)
	if err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation, nil))
}
