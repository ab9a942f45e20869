package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/ordersight/internal/database"
	"github.com/matthieukhl/ordersight/internal/queries"
	"github.com/matthieukhl/ordersight/internal/report"
)

type Server struct {
	router      *gin.Engine
	db          *database.DB
	store       *queries.Store
	windowHours int
}

// NewServer creates a read-only API over the populated store.
func NewServer(db *database.DB, windowHours int) *Server {
	router := gin.Default()

	server := &Server{
		router:      router,
		db:          db,
		store:       queries.NewStore(db),
		windowHours: windowHours,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/segments", s.segments)
		api.GET("/top-orders", s.topOrders)
		api.GET("/order-values", s.orderValues)
		api.GET("/funnel", s.funnel)
		api.GET("/funnel/chart", s.funnelChart)
	}
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.db.HealthCheck(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "store connection failed",
		})
		return
	}

	info, err := s.store.BuildInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ordersight",
		"build":   info,
	})
}

func (s *Server) segments(c *gin.Context) {
	counts, err := s.store.SegmentCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": counts})
}

func (s *Server) topOrders(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	orders, err := s.store.TopOrdersByValue(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) orderValues(c *gin.Context) {
	averages, err := s.store.AverageOrderValueBySegment()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"averages": averages})
}

func (s *Server) funnel(c *gin.Context) {
	dist, err := s.store.Funnel(s.windowHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dist)
}

func (s *Server) funnelChart(c *gin.Context) {
	dist, err := s.store.Funnel(s.windowHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	url, err := report.FunnelChartURL(dist)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
