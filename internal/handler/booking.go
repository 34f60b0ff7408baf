package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/middleware"
	"github.com/iliyamo/railway-reservation/internal/queue"
	"github.com/iliyamo/railway-reservation/internal/repository"
	"github.com/iliyamo/railway-reservation/internal/service"
	"github.com/iliyamo/railway-reservation/internal/utils"
)

// BookingHandler serves booking creation and retrieval.  All routes
// require authentication.
type BookingHandler struct {
	Coordinator *service.BookingCoordinator
	Bookings    *repository.BookingRepo
}

func NewBookingHandler(co *service.BookingCoordinator, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Coordinator: co, Bookings: bookings}
}

// Create books seats on a schedule for the authenticated user.  A
// refused booking returns 400 with a reason the client can branch on;
// INSUFFICIENT_SEATS additionally carries the current availability and
// CONCURRENT_MODIFICATION means the client may simply retry.
func (h *BookingHandler) Create(c echo.Context) error {
	uid := currentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Coordinator.CreateBooking(ctx, uid, req)
	if err != nil {
		var rej *service.Rejection
		if errors.As(err, &rej) {
			return c.JSON(http.StatusBadRequest, rej)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	// Notify downstream consumers; a broker outage never fails the
	// booking that already committed.
	go func() {
		seats := make([]uint32, 0, len(res.Passengers))
		for _, p := range res.Passengers {
			seats = append(seats, p.SeatNumber)
		}
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		_ = queue.PublishBookingConfirmed(pctx, queue.BookingConfirmedEvent{
			BookingID:      res.BookingID,
			PNR:            res.PNR,
			UserID:         uid,
			ScheduleID:     res.Run.ScheduleID,
			TrainNumber:    res.Run.TrainNumber,
			TrainName:      res.Run.TrainName,
			Source:         res.Run.Source,
			Destination:    res.Run.Destination,
			TravelDate:     res.Run.RunsOn,
			DepartureTime:  res.Run.DepartureTime,
			SeatNumbers:    seats,
			TotalFarePaise: res.TotalFarePaise,
			ConfirmedAt:    res.ConfirmedAt.Format(time.RFC3339),
		})
	}()

	passengers := make([]echo.Map, 0, len(res.Passengers))
	for _, p := range res.Passengers {
		passengers = append(passengers, echo.Map{
			"name":        p.Name,
			"age":         p.Age,
			"gender":      p.Gender,
			"seat_number": p.SeatNumber,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"pnr":              res.PNR,
		"status":           res.Status,
		"total_fare_paise": res.TotalFarePaise,
		"confirmed_at":     res.ConfirmedAt.Format(time.RFC3339),
		"train_number":     res.Run.TrainNumber,
		"train_name":       res.Run.TrainName,
		"source":           res.Run.Source,
		"destination":      res.Run.Destination,
		"travel_date":      res.Run.RunsOn,
		"departure_time":   res.Run.DepartureTime,
		"passengers":       passengers,
	})
}

// My lists the authenticated user's bookings, newest first.
func (h *BookingHandler) My(c echo.Context) error {
	uid := currentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	details, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	c.Set(middleware.ResultsCountKey, len(details))
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// ByPNR fetches one booking of the authenticated user by its PNR.  A
// PNR that belongs to another user is indistinguishable from one that
// does not exist.
func (h *BookingHandler) ByPNR(c echo.Context) error {
	uid := currentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pnr := strings.TrimSpace(c.Param("pnr"))
	if len(pnr) != utils.PNRLength {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pnr"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	detail, err := h.Bookings.GetByPNRForUser(ctx, pnr, uid)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, detail)
}
