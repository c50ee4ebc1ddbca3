// Package models holds the HTTP-facing request/response shapes that wrap the
// domain and scheduler types for JSON transport.
package models

import "github.com/bruno.lopes/dutyplanner/internal/scheduler"

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the /api/version payload.
type VersionResponse struct {
	Version string `json:"version"`
}

// CalendarSummary describes a persisted calendar for list views.
type CalendarSummary struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Region    string `json:"region"`
}

// ScheduleRequest is the body of a POST /api/schedules call. HintScheduleID
// optionally names a previously solved schedule whose assignments seed the
// solver's solution hints.
type ScheduleRequest struct {
	CalendarID       string `json:"calendar_id" binding:"required"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	HintScheduleID   string `json:"hint_schedule_id"`
}

// ScheduleResponse is the body returned from a solved schedule.
type ScheduleResponse struct {
	ID          string                            `json:"id"`
	Status      scheduler.Status                  `json:"status"`
	ByPhysician map[string][]scheduler.Assignment `json:"by_physician"`
}

// ChatRequest is the body of a POST /api/schedules/:id/chat call.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse carries the advisory reply for a scheduling-decision question.
type ChatResponse struct {
	Reply string `json:"reply"`
}
