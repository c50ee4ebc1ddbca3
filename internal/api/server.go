package api

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bruno.lopes/dutyplanner/internal/api/handlers"
)

// Server wires the gin router to one database connection.
type Server struct {
	db     *sql.DB
	router *gin.Engine
}

// NewServer builds a Server bound to db. Returns an error since the handler
// layer now loads the holiday service eagerly.
func NewServer(db *sql.DB) (*Server, error) {
	h, err := handlers.NewHandler(db)
	if err != nil {
		return nil, err
	}

	s := &Server{db: db, router: gin.Default()}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	s.router.Use(cors.New(corsConfig))

	s.setupRoutes(h)
	return s, nil
}

func (s *Server) setupRoutes(h *handlers.Handler) {
	api := s.router.Group("/api")
	{
		api.GET("/health", h.Health)

		api.GET("/version", func(c *gin.Context) {
			version := handlers.Version
			if v := os.Getenv("APP_VERSION"); v != "" {
				version = v
			}
			c.JSON(http.StatusOK, gin.H{"version": version})
		})

		api.GET("/config/tasks", h.GetTaskConfig)
		api.PUT("/config/tasks", h.PutTaskConfig)

		api.GET("/config/physicians", h.GetPhysicianConfig)
		api.PUT("/config/physicians", h.PutPhysicianConfig)
		api.PUT("/physicians/:name/unavailability", h.PutUnavailability)

		api.GET("/calendars", h.GetCalendars)
		api.POST("/calendars", h.PostCalendar)
		api.GET("/calendars/:id/periods", h.GetCalendarPeriods)

		api.POST("/schedules", h.PostSchedule)
		api.GET("/schedules/:id", h.GetSchedule)
		api.GET("/schedules/:id/ics", h.GetScheduleICS)
		api.POST("/schedules/:id/chat", h.Explain)

		api.GET("/settings/:key", h.GetSetting)
		api.PUT("/settings/:key", h.PutSetting)
		api.GET("/models", h.GetAvailableModels)
	}
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
