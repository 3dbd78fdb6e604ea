package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/cartoonist/internal/core"
	"github.com/agenthands/cartoonist/internal/core/location"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/logging"
	"github.com/agenthands/cartoonist/internal/store"
)

const (
	SessionHeader       = "X-Session-ID"
	locationNotFoundMsg = "we could not determine your location"
)

// RecentLister is the optional place index behind GET /cartoons.
type RecentLister interface {
	Recent(ctx context.Context, place string, limit int) ([]store.Summary, error)
}

type Server struct {
	Cartoonist     *core.Cartoonist
	Store          store.Store
	Index          RecentLister
	AllowedOrigins []string

	logger *log.Logger
}

// NewServer accepts a nil index; the listing endpoint then answers 501.
func NewServer(c *core.Cartoonist, st store.Store, index RecentLister, allowedOrigins []string, logger *log.Logger) *Server {
	return &Server{
		Cartoonist:     c,
		Store:          st,
		Index:          index,
		AllowedOrigins: allowedOrigins,
		logger:         logging.OrDiscard(logger),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if len(s.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  s.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", SessionHeader},
			ExposeHeaders: []string{SessionHeader, "Retry-After"},
		}))
	}

	r.GET("/health", s.Health)
	r.POST("/location", s.Locate)
	r.POST("/cartoons", s.CreateCartoon)
	r.GET("/cartoons", s.ListCartoons)
	r.GET("/cartoons/:ref", s.GetCartoon)
	r.GET("/cartoons/:ref/image", s.GetCartoonImage)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type LocationRequest struct {
	Manual    string   `json:"manual"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

func (s *Server) Locate(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	loc, err := s.Cartoonist.Locate(c.Request.Context(), location.Request{
		Manual:   req.Manual,
		Device:   device(req.Latitude, req.Longitude, req.Accuracy),
		ClientIP: c.ClientIP(),
	})
	if errors.Is(err, location.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": locationNotFoundMsg})
		return
	}
	if err != nil {
		s.logger.Error("location lookup failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": loc, "display": location.Format(loc.Address)})
}

type CartoonRequest struct {
	ManualLocation string   `json:"manual_location"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Accuracy       *float64 `json:"accuracy"`
	// City and Country together skip resolution, for hosts that already
	// confirmed a place through POST /location.
	City    string `json:"city"`
	Country string `json:"country"`
}

func (s *Server) CreateCartoon(c *gin.Context) {
	var req CartoonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	callerID := strings.TrimSpace(c.GetHeader(SessionHeader))
	if callerID == "" {
		callerID = uuid.NewString()
	}
	c.Header(SessionHeader, callerID)

	session := core.Session{
		CallerID:       callerID,
		ManualLocation: req.ManualLocation,
		ClientIP:       c.ClientIP(),
		Device:         device(req.Latitude, req.Longitude, req.Accuracy),
	}
	if city, country := strings.TrimSpace(req.City), strings.TrimSpace(req.Country); city != "" && country != "" {
		session.Location = confirmed(city, country, session.Device)
	}

	out := s.Cartoonist.Run(c.Request.Context(), session)
	switch out.Status {
	case core.StatusRateLimited:
		c.Header("Retry-After", strconv.Itoa(out.RetryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, out)
	case core.StatusLocationNotFound:
		c.JSON(http.StatusNotFound, gin.H{"status": out.Status, "error": locationNotFoundMsg})
	default:
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) GetCartoon(c *gin.Context) {
	rec, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec.Meta)
}

func (s *Server) GetCartoonImage(c *gin.Context) {
	rec, ok := s.load(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, rec.Meta.MIMEType, rec.Image)
}

func (s *Server) ListCartoons(c *gin.Context) {
	if s.Index == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "cartoon index is not configured"})
		return
	}
	place := strings.TrimSpace(c.Query("place"))
	if place == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := s.Index.Recent(c.Request.Context(), place, limit)
	if err != nil {
		s.logger.Error("failed to list cartoons", "place", place, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cartoons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) load(c *gin.Context) (*store.Record, bool) {
	rec, err := s.Store.Load(c.Request.Context(), c.Param("ref"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "cartoon not found"})
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load cartoon", "ref", c.Param("ref"), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cartoon"})
		return nil, false
	}
	return rec, true
}

func device(lat, lon, accuracy *float64) *model.Coordinates {
	if lat == nil || lon == nil {
		return nil
	}
	return &model.Coordinates{
		Latitude:  *lat,
		Longitude: *lon,
		Accuracy:  accuracy,
		Source:    model.ProvenanceDevice,
	}
}

func confirmed(city, country string, coords *model.Coordinates) *model.Location {
	loc := &model.Location{Address: model.Address{City: city, Country: country}}
	loc.Address.Display = location.Format(loc.Address)
	if coords != nil {
		loc.Coordinates = *coords
	} else {
		loc.Coordinates.Source = model.ProvenanceManual
	}
	return loc
}
