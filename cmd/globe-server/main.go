package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/filter"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/globe"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/internal/logger"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/session"
)

const defaultDataURL = "https://raw.githubusercontent.com/ThatSimPilot/ATCGroundPoint-AirportMap/main/data/airports.json"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadDataset prefers the local snapshot cache and falls back to the
// network fetch, writing a fresh snapshot after a successful fetch.
func loadDataset(ctx context.Context, url, snapshotPath string) *airport.Dataset {
	log := logger.L()

	if ds, err := airport.LoadSnapshot(snapshotPath); err == nil {
		log.Info("dataset restored from snapshot", "path", snapshotPath, "airports", len(ds.Airports))
		return ds
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warn("snapshot unreadable, fetching instead", "path", snapshotPath, "err", err)
	}

	ds := airport.Load(ctx, nil, url)
	if len(ds.Airports) > 1 || (len(ds.Airports) == 1 && ds.Airports[0].ICAO != airport.ErrorMarker().ICAO) {
		if err := airport.SaveSnapshot(ds, snapshotPath); err != nil {
			log.Warn("failed to write dataset snapshot", "path", snapshotPath, "err", err)
		} else {
			log.Info("dataset snapshot written", "path", snapshotPath)
		}
	}
	return ds
}

// filterPatch is the partial-update body for PATCH /api/filter. Pointer
// fields distinguish "leave alone" from explicit values.
type filterPatch struct {
	ToggleStatus        *string `json:"toggleStatus,omitempty"`
	Search              *string `json:"search,omitempty"`
	SortField           *string `json:"sortField,omitempty"`
	ToggleSortDirection bool    `json:"toggleSortDirection,omitempty"`
	Continent           *string `json:"continent,omitempty"`
	Country             *string `json:"country,omitempty"`
	CommunityOnly       *bool   `json:"communityOnly,omitempty"`
	InViewOnly          *bool   `json:"inViewOnly,omitempty"`
}

func stateJSON(s filter.State) gin.H {
	statuses := make([]airport.Status, 0, len(s.Statuses))
	for st, on := range s.Statuses {
		if on {
			statuses = append(statuses, st)
		}
	}
	return gin.H{
		"statuses":      statuses,
		"communityOnly": s.CommunityOnly,
		"inViewOnly":    s.InViewOnly,
		"continent":     s.Continent,
		"country":       s.Country,
		"search":        s.Search,
		"sortField":     s.SortField,
		"sortReversed":  s.SortReversed,
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.L().Debug("no .env file found")
	}
	log := logger.Setup()

	dataURL := envOr("DATA_URL", defaultDataURL)
	snapshotPath := envOr("SNAPSHOT_PATH", "data/airports.snapshot.zst")
	stateDir := envOr("STATE_DIR", "data/state")
	port := envOr("PORT", "8000")

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		log.Warn("failed to create state directory", "dir", stateDir, "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	dataset := loadDataset(ctx, dataURL, snapshotPath)
	cancel()

	sessions := session.NewManager(dataset, stateDir, 32)
	defer sessions.Close()

	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	sessionOf := func(c *gin.Context) *session.Session {
		return sessions.Get(c.Query("session"))
	}

	r.GET("/api/dataset/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"schemaVersion": dataset.SchemaVersion,
			"lastUpdated":   dataset.LastUpdated,
			"airports":      len(dataset.Airports),
		})
	})

	// Filtered and sorted airport list for the session.
	r.GET("/api/airports", func(c *gin.Context) {
		s := sessionOf(c)
		c.JSON(http.StatusOK, gin.H{
			"session":  s.ID,
			"airports": s.App.Filtered(),
		})
	})

	// Marker set for a camera pose. Passing lat/lng/alt moves the
	// camera first; without them the current pose is used.
	r.GET("/api/markers", func(c *gin.Context) {
		s := sessionOf(c)

		if c.Query("alt") != "" {
			lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
			lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
			alt, err3 := strconv.ParseFloat(c.Query("alt"), 64)
			if err1 != nil || err2 != nil || err3 != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "lat, lng and alt must be numeric"})
				return
			}
			s.App.MoveCamera(globe.POV{Lat: lat, Lng: lng, Altitude: alt})
			// Let the frame tick flush the coalesced zoom refresh.
			time.Sleep(2 * globe.DefaultFrameInterval)
		}

		mode := s.App.Mode()
		c.JSON(http.StatusOK, gin.H{
			"session":    s.ID,
			"clustering": mode.Enabled,
			"resolution": mode.Resolution,
			"markers":    s.Engine.Points(),
			"labels":     s.Engine.Labels(),
			"summary":    s.App.Summary(),
		})
	})

	r.PATCH("/api/filter", func(c *gin.Context) {
		s := sessionOf(c)
		var patch filterPatch
		if err := c.BindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter patch"})
			return
		}

		rejected := false
		if patch.ToggleStatus != nil {
			if !s.App.ToggleStatus(airport.Status(*patch.ToggleStatus)) {
				rejected = true
			}
		}
		if patch.Search != nil {
			s.App.SetSearch(*patch.Search)
		}
		if patch.SortField != nil {
			s.App.SetSort(filter.SortField(*patch.SortField))
		}
		if patch.ToggleSortDirection {
			s.App.ToggleSortDirection()
		}
		if patch.Continent != nil {
			s.App.SetContinent(*patch.Continent)
		}
		if patch.Country != nil {
			s.App.SetCountry(*patch.Country)
		}
		if patch.CommunityOnly != nil {
			s.App.SetCommunityOnly(*patch.CommunityOnly)
		}
		if patch.InViewOnly != nil {
			s.App.SetInViewOnly(*patch.InViewOnly)
		}

		c.JSON(http.StatusOK, gin.H{
			"session":        s.ID,
			"state":          stateJSON(s.App.State()),
			"toggleRejected": rejected,
			"results":        len(s.App.Filtered()),
		})
	})

	r.POST("/api/select/:icao", func(c *gin.Context) {
		s := sessionOf(c)
		s.App.Select(c.Param("icao"))
		c.JSON(http.StatusOK, gin.H{"session": s.ID, "selected": s.App.Selected()})
	})

	r.DELETE("/api/select", func(c *gin.Context) {
		s := sessionOf(c)
		s.App.Select("")
		c.JSON(http.StatusOK, gin.H{"session": s.ID, "selected": ""})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("starting globe server", "port", port)
		if err := r.Run(":" + port); err != nil {
			log.Error("server error", "err", err)
		}
	}()

	<-quit
	log.Info("shutting down")
}
