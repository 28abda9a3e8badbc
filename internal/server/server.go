package server

import (
	"log/slog"
	"net/http"
	"time"

	"polls/internal/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	store    Store
	cfg      config.Config
	sessions *sessionStore
	live     *liveHub
	clock    func() time.Time
}

// New builds a server backed by conn, or by an in-memory store when conn is nil.
func New(conn *gorm.DB, cfg config.Config) *Server {
	store := NewMemoryStore()
	if conn != nil {
		store = NewDBStore(conn)
	}
	return &Server{
		store:    store,
		cfg:      cfg,
		sessions: newSessionStore(conn),
		live:     newLiveHub(),
		clock:    time.Now,
	}
}

func (s *Server) now() time.Time {
	return s.clock().UTC()
}

func (s *Server) location() *time.Location {
	if s.cfg.Location == nil {
		return time.UTC
	}
	return s.cfg.Location
}

func (s *Server) Handler() http.Handler {
	switch s.cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(s.cfg.GinMode)
	case "":
	default:
		slog.Warn("unknown gin mode", "mode", s.cfg.GinMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(withRequestID(), withLogging(), gin.Recovery())
	router.NoRoute(s.handleNotFound)
	router.NoMethod(s.handleMethodNotAllowed)

	router.GET("/", s.handleRoot)
	router.GET("/healthz", s.handleHealthz)
	router.Static("/static", "static")

	polls := router.Group("/polls")
	polls.GET("/", s.handleIndex)
	polls.GET("/archive/", s.handleArchive)
	polls.GET("/add/", s.handleAddQuestionForm)
	polls.POST("/add/", s.handleAddQuestion)
	polls.GET("/:id/", s.handleDetail)
	polls.GET("/:id/results/", s.handleResults)
	polls.POST("/:id/vote/", s.handleVote)

	api := router.Group("/api")
	api.GET("/questions", s.handleAPIQuestions)
	api.GET("/questions/:id/results", s.handleAPIResults)
	api.GET("/questions/:id/events", s.handleAPIEvents)

	router.GET("/ws/questions/:id", s.handleLiveResults)
	return router
}
