package api

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/gladiator-arena/internal/betting"
	"github.com/rawblock/gladiator-arena/internal/coordinator"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// maxRosterSize caps how many agents one battle can seat, a
// runaway-resource-consumption guard against unbounded roster sizes.
const maxRosterSize = 12

// APIHandler holds the single Coordinator every route dispatches through.
type APIHandler struct {
	coord *coordinator.Coordinator
}

// SetupRouter wires the Gin engine: CORS, bearer-token auth, per-IP rate
// limiting, and the battle endpoints, with public and protected routes
// grouped separately.
func SetupRouter(coord *coordinator.Coordinator) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var.
	// Production: ALLOWED_ORIGINS=https://arena.example.com
	// Development: leave empty for *.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{coord: coord}

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/battles/:id", handler.handleGetState)
		pub.GET("/battles/:id/stream", handler.handleStream)
		pub.GET("/leaderboard", handler.handleLeaderboard)
	}

	// ── Protected endpoints (require bearer token if API_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	// Starting a battle is cheap to request but expensive to run; betting
	// and sponsorship writes happen far more often during a live battle.
	auth.Use(NewRateLimiter(30, 5).Middleware())
	{
		auth.POST("/battles", handler.handleStartBattle)
		auth.POST("/battles/:id/bets", handler.handlePlaceBet)
		auth.POST("/battles/:id/sponsorships", handler.handleSponsor)
	}

	// Serve the spectator dashboard.
	r.Static("/dashboard", "./public")

	return r
}

// handleHealth returns engine status for service discovery.
func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "Gladiator Arena v1.0",
	})
}

// handleStartBattle creates a battle, seats its roster, opens betting, and
// launches its tick loop in the background, returning as soon as the
// battle reaches BETTING_OPEN.
// POST /api/v1/battles
func (h *APIHandler) handleStartBattle(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
		Roster []coordinator.RosterEntry `json:"roster" binding:"required"`
		MaxEpochs int `json:"maxEpochs"`
		MarketSeed int64 `json:"marketSeed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Roster) == 0 || len(req.Roster) > maxRosterSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster must have between 1 and " + strconv.Itoa(maxRosterSize) + " agents"})
		return
	}

	opts := coordinator.StartOptions{MaxEpochs: req.MaxEpochs, MarketSeed: req.MarketSeed}
	if _, err := h.coord.StartBattle(c.Request.Context(), req.ID, req.Roster, opts); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	runCtx := c.Copy().Request.Context()
	go func() {
		if err := h.coord.ActivateAndRun(runCtx, req.ID); err != nil {
			log.Printf("[api] battle %s ended with error: %v", req.ID, err)
		}
	}()

	view, _ := h.coord.GetState(req.ID)
	c.JSON(http.StatusCreated, view)
}

// handleGetState returns one battle's current state.
// GET /api/v1/battles/:id
func (h *APIHandler) handleGetState(c *gin.Context) {
	view, err := h.coord.GetState(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown battle"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// handlePlaceBet places a spectator wager on a roster agent.
// POST /api/v1/battles/:id/bets
func (h *APIHandler) handlePlaceBet(c *gin.Context) {
	var req struct {
		Bettor string `json:"bettor" binding:"required"`
		AgentID string `json:"agentId" binding:"required"`
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bet, err := h.coord.PlaceBet(c.Param("id"), req.Bettor, req.AgentID, req.Amount)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, coordinator.ErrUnknownBattle) {
			status = http.StatusNotFound
		} else if errors.Is(err, betting.ErrInvalidPhase) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, bet)
}

// handleSponsor records a tiered sponsorship pledge for a roster agent.
// POST /api/v1/battles/:id/sponsorships
func (h *APIHandler) handleSponsor(c *gin.Context) {
	var req struct {
		Sponsor string `json:"sponsor" binding:"required"`
		Beneficiary string `json:"beneficiaryAgentId" binding:"required"`
		Amount float64 `json:"amount" binding:"required"`
		Tier models.SponsorTier `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if _, ok := models.TierEffects[req.Tier]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sponsorship tier"})
		return
	}

	sp, err := h.coord.Sponsor(c.Param("id"), req.Sponsor, req.Beneficiary, req.Amount, req.Tier)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, coordinator.ErrUnknownBattle) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sp)
}

// handleLeaderboard returns every tracked agent's composite display rating.
// GET /api/v1/leaderboard
func (h *APIHandler) handleLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"leaderboard": h.coord.Leaderboard()})
}
