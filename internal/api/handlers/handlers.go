package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bruno.lopes/dutyplanner/internal/calendarx"
	"github.com/bruno.lopes/dutyplanner/internal/config"
	"github.com/bruno.lopes/dutyplanner/internal/domain"
	"github.com/bruno.lopes/dutyplanner/internal/holidays"
	"github.com/bruno.lopes/dutyplanner/internal/ics"
	"github.com/bruno.lopes/dutyplanner/internal/models"
	"github.com/bruno.lopes/dutyplanner/internal/scheduler"
	"github.com/bruno.lopes/dutyplanner/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Handler wires every route to the database and the holiday service.
type Handler struct {
	db             *sql.DB
	holidayService *holidays.Service
}

// NewHandler builds a Handler bound to db.
func NewHandler(db *sql.DB) (*Handler, error) {
	hs, err := holidays.NewService(db)
	if err != nil {
		return nil, err
	}
	return &Handler{db: db, holidayService: hs}, nil
}

// Health answers /api/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

// Version answers /api/version.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, models.VersionResponse{Version: Version})
}

// GetTaskConfig returns the persisted task categories/tasks/linkages.
func (h *Handler) GetTaskConfig(c *gin.Context) {
	reg, err := store.LoadTaskRegistry(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config.FromTaskRegistry(reg))
}

// PutTaskConfig validates and replaces the persisted task configuration.
func (h *Handler) PutTaskConfig(c *gin.Context) {
	var doc config.TaskConfigDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reg, err := doc.ToTaskRegistry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := store.SaveTaskRegistry(h.db, reg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config.FromTaskRegistry(reg))
}

// GetPhysicianConfig returns the persisted physician roster.
func (h *Handler) GetPhysicianConfig(c *gin.Context) {
	tasks, err := store.LoadTaskRegistry(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	reg, err := store.LoadPhysicianRegistry(h.db, tasks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config.FromPhysicianRegistry(reg))
}

// PutPhysicianConfig validates and replaces the persisted physician roster.
func (h *Handler) PutPhysicianConfig(c *gin.Context) {
	tasks, err := store.LoadTaskRegistry(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var doc config.PhysicianConfigDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reg, err := doc.ToPhysicianRegistry(tasks)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := store.SavePhysicianRegistry(h.db, reg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config.FromPhysicianRegistry(reg))
}

// PutUnavailability replaces one physician's unavailability entries.
func (h *Handler) PutUnavailability(c *gin.Context) {
	name := c.Param("name")

	tasks, err := store.LoadTaskRegistry(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	reg, err := store.LoadPhysicianRegistry(h.db, tasks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, ok := reg.GetPhysician(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUnknownPhysician.Error()})
		return
	}

	var entries []config.UnavailabilityEntryDoc
	if err := c.ShouldBindJSON(&entries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc := config.FromUnavailability(reg)
	doc[name] = entries
	if err := doc.ToUnavailability(reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := store.SavePhysicianRegistry(h.db, reg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config.FromUnavailability(reg))
}

// PostCalendar builds and persists a new calendar over the requested horizon.
func (h *Handler) PostCalendar(c *gin.Context) {
	var input struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
		Region    string `json:"region" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	cal, err := calendarx.New(start, end, input.Region, nil, h.holidayService)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.NewString()
	if err := store.SaveCalendar(h.db, id, cal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "calendar": config.FromCalendar(cal)})
}

// GetCalendars lists every persisted calendar.
func (h *Handler) GetCalendars(c *gin.Context) {
	metas, err := store.ListCalendars(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var out []models.CalendarSummary
	for _, m := range metas {
		out = append(out, models.CalendarSummary{
			ID:        m.ID,
			StartDate: m.StartDate.Format("2006-01-02"),
			EndDate:   m.EndDate.Format("2006-01-02"),
			Region:    m.Region,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetCalendarPeriods segments one calendar and returns its MAIN/CALL periods.
func (h *Handler) GetCalendarPeriods(c *gin.Context) {
	meta, err := store.LoadCalendarMeta(h.db, c.Param("id"))
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "calendar not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cal, err := calendarx.New(meta.StartDate, meta.EndDate, meta.Region, nil, h.holidayService)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	periods := calendarx.Segment(cal)
	c.JSON(http.StatusOK, periods)
}

// PostSchedule solves a schedule over a persisted calendar and stores it.
func (h *Handler) PostSchedule(c *gin.Context) {
	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta, err := store.LoadCalendarMeta(h.db, req.CalendarID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "calendar not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tasks, err := store.LoadTaskRegistry(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	physicians, err := store.LoadPhysicianRegistry(h.db, tasks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	cal, err := calendarx.New(meta.StartDate, meta.EndDate, meta.Region, nil, h.holidayService)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sched := scheduler.New(tasks, physicians, cal)
	sched.SetSchedulingPeriod(meta.StartDate, meta.EndDate)

	var hints []scheduler.Hint
	var prior map[string][]scheduler.Assignment
	if req.HintScheduleID != "" {
		_, hinted, err := store.LoadSchedule(h.db, req.HintScheduleID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "hint schedule not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// The hinted schedule doubles as the physicians' assignment history
		// for the objective's fairness/spread/revenue terms.
		prior = hinted
		for physician, assignments := range hinted {
			for _, a := range assignments {
				hints = append(hints, scheduler.Hint{
					TaskName: a.TaskName, Start: a.StartDate, End: a.EndDate, Physician: physician,
				})
			}
		}
	}

	timeLimit := time.Duration(req.TimeLimitSeconds) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeLimit+10*time.Second)
	defer cancel()

	result, err := sched.GenerateSchedule(ctx, scheduler.Options{TimeLimit: timeLimit, Hints: hints, PriorSchedule: prior})
	if err != nil {
		status := scheduler.Status("")
		if result != nil {
			status = result.Status
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "status": status})
		return
	}

	id := uuid.NewString()
	if err := store.SaveSchedule(h.db, id, req.CalendarID, result.Status, result.ByPhysician); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ScheduleResponse{ID: id, Status: result.Status, ByPhysician: result.ByPhysician})
}

// GetSchedule returns one previously solved schedule.
func (h *Handler) GetSchedule(c *gin.Context) {
	id := c.Param("id")
	status, byPhysician, err := store.LoadSchedule(h.db, id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.ScheduleResponse{ID: id, Status: status, ByPhysician: byPhysician})
}

// GetScheduleICS exports one solved schedule as an RFC 5545 calendar.
func (h *Handler) GetScheduleICS(c *gin.Context) {
	id := c.Param("id")
	_, byPhysician, err := store.LoadSchedule(h.db, id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/calendar")
	c.Header("Content-Disposition", "attachment; filename=\""+id+".ics\"")
	if err := ics.Export(c.Writer, byPhysician); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetSetting returns one application setting.
func (h *Handler) GetSetting(c *gin.Context) {
	value, err := store.GetSetting(h.db, c.Param("key"))
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{c.Param("key"): value})
}

// PutSetting upserts one application setting.
func (h *Handler) PutSetting(c *gin.Context) {
	var input struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := store.SetSetting(h.db, c.Param("key"), input.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "setting updated"})
}
