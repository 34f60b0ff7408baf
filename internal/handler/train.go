package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/eventlog"
	"github.com/iliyamo/railway-reservation/internal/middleware"
	"github.com/iliyamo/railway-reservation/internal/model"
	"github.com/iliyamo/railway-reservation/internal/repository"
)

// TrainHandler serves the admin train/schedule endpoints and the public
// search endpoint.
type TrainHandler struct {
	DB        *sql.DB
	Trains    *repository.TrainRepo
	Schedules *repository.ScheduleRepo
	Recorder  *eventlog.Recorder
}

func NewTrainHandler(db *sql.DB, trains *repository.TrainRepo, schedules *repository.ScheduleRepo, rec *eventlog.Recorder) *TrainHandler {
	return &TrainHandler{DB: db, Trains: trains, Schedules: schedules, Recorder: rec}
}

type createTrainReq struct {
	TrainNumber   string `json:"train_number"`
	TrainName     string `json:"train_name"`
	TotalSeats    uint32 `json:"total_seats"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"` // HH:MM or HH:MM:SS
	ArrivalTime   string `json:"arrival_time"`
	BaseFarePaise uint64 `json:"base_fare_paise"`
	RunsOn        string `json:"runs_on"` // YYYY-MM-DD
}

// normalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS, or an
// empty string when the input is not a valid time of day.
func normalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("15:04:05", s); err == nil {
		return s
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05")
	}
	return ""
}

// Create registers (or refreshes) a train and adds one dated run for
// it.  Train, schedule and the schedule's empty seat ledger are created
// in a single transaction so a schedule can never exist without its
// ledger row.
func (h *TrainHandler) Create(c echo.Context) error {
	var req createTrainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.TrainNumber = strings.ToUpper(strings.TrimSpace(req.TrainNumber))
	req.TrainName = strings.TrimSpace(req.TrainName)
	req.Source = strings.TrimSpace(req.Source)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.TrainNumber == "" || req.TrainName == "" || req.Source == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "train_number, train_name, source and destination required"})
	}
	if strings.EqualFold(req.Source, req.Destination) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source and destination must differ"})
	}
	if req.TotalSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
	}
	if req.BaseFarePaise == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_fare_paise must be positive"})
	}
	dep := normalizeClock(req.DepartureTime)
	arr := normalizeClock(req.ArrivalTime)
	if dep == "" || arr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_time and arrival_time must be HH:MM or HH:MM:SS"})
	}
	runsOn, err := time.Parse("2006-01-02", strings.TrimSpace(req.RunsOn))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "runs_on must be YYYY-MM-DD"})
	}
	if runsOn.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "runs_on must not be in the past"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	trainID, created, err := h.Trains.UpsertTx(ctx, tx, req.TrainNumber, req.TrainName, req.TotalSeats)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save train failed"})
	}
	sched := &model.Schedule{
		TrainID:       trainID,
		Source:        req.Source,
		Destination:   req.Destination,
		DepartureTime: dep,
		ArrivalTime:   arr,
		BaseFarePaise: req.BaseFarePaise,
		RunsOn:        runsOn.Format("2006-01-02"),
	}
	if err := h.Schedules.CreateTx(ctx, tx, sched); err != nil {
		// The unique (train_id, runs_on, departure_time) key turns a
		// duplicate run into a conflict, not a 500.
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "schedule already exists for this train and date"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save schedule failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"train_id":      trainID,
		"schedule_id":   sched.ID,
		"train_created": created,
	})
}

// List returns all active trains.
func (h *TrainHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	trains, err := h.Trains.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(trains))
	for _, t := range trains {
		out = append(out, echo.Map{
			"id":           t.ID,
			"train_number": t.Number,
			"train_name":   t.Name,
			"total_seats":  t.TotalSeats,
		})
	}
	c.Set(middleware.ResultsCountKey, len(out))
	return c.JSON(http.StatusOK, echo.Map{"trains": out})
}

// Search finds schedules between two stations, optionally on a given
// date.  Availability in the results is a snapshot and may be stale the
// moment it is returned; only the booking transaction decides.
func (h *TrainHandler) Search(c echo.Context) error {
	source := strings.TrimSpace(c.QueryParam("source"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	if source == "" || destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source and destination required"})
	}
	date := strings.TrimSpace(c.QueryParam("date"))
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, total, err := h.Schedules.Search(ctx, repository.SearchQuery{
		Source:      source,
		Destination: destination,
		Date:        date,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	// Route popularity is tracked out of band; a down analytics store
	// never affects the search result.
	go func() {
		rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer rcancel()
		h.Recorder.RecordSearch(rctx, source, destination)
	}()

	c.Set(middleware.ResultsCountKey, len(rows))
	return c.JSON(http.StatusOK, echo.Map{
		"total":   total,
		"limit":   limit,
		"offset":  offset,
		"results": rows,
	})
}
