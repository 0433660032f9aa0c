package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/taskdeck/config"
	"github.com/ngenohkevin/taskdeck/internal/cache"
	"github.com/ngenohkevin/taskdeck/internal/runner"
	"github.com/ngenohkevin/taskdeck/internal/system"
	"github.com/ngenohkevin/taskdeck/internal/task"
)

// Version is the agent version reported by health and info.
const Version = "1.0.0"

// Handlers holds all HTTP handlers
type Handlers struct {
	cfg      *config.Config
	cache    *cache.InfoCache
	registry *task.Registry
	runner   runner.Runner
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, registry *task.Registry) *Handlers {
	h := &Handlers{
		cfg:      cfg,
		cache:    cache.NewInfoCache(),
		registry: registry,
	}

	// Pick the task runner; fall back to host execution if Docker
	// is configured but unreachable.
	if cfg.Runner == config.RunnerDocker {
		dockerRunner, err := runner.NewDockerRunner(cfg.DockerImage, cfg.ExecTimeout)
		if err == nil {
			h.runner = dockerRunner
		} else {
			log.Printf("[WARN] docker runner unavailable, using host runner: %v", err)
		}
	}
	if h.runner == nil {
		h.runner = runner.NewHostRunner(cfg.ExecTimeout)
	}

	return h
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

// GetInfo handles GET /api/info
func (h *Handlers) GetInfo(c *gin.Context) {
	cached, found := h.cache.Get(cache.KeyHost)
	if found {
		c.JSON(http.StatusOK, cached)
		return
	}

	hostInfo, err := system.GetHostInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	info := gin.H{
		"hostname": hostInfo.Hostname,
		"os":       hostInfo.OS,
		"platform": hostInfo.Platform,
		"kernel":   hostInfo.KernelVersion,
		"arch":     hostInfo.KernelArch,
		"uptime":   hostInfo.UptimeHuman,
		"agent":    "taskdeck",
		"version":  Version,
	}

	h.cache.Set(cache.KeyHost, info)
	c.JSON(http.StatusOK, info)
}

// IssueToken handles POST /auth/token
func (h *Handlers) IssueToken(auth *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ExtractToken(c)
		if !auth.ValidateAPIKey(key) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}

		token, err := auth.GenerateToken("client", 24*time.Hour)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_in": int((24 * time.Hour).Seconds()),
		})
	}
}

// ListTasks handles GET /api/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List())
}

// GetTask handles GET /api/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	id := c.Param("id")

	t, err := h.registry.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, t)
}

// CreateTask handles POST /api/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var t task.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Add(t); err != nil {
		if errors.Is(err, task.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, t)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handlers) DeleteTask(c *gin.Context) {
	id := c.Param("id")

	if err := h.registry.Remove(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// RunTask handles POST /api/tasks/:id/run
func (h *Handlers) RunTask(c *gin.Context) {
	id := c.Param("id")

	t, err := h.registry.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Close cleans up handler resources
func (h *Handlers) Close() error {
	if dockerRunner, ok := h.runner.(*runner.DockerRunner); ok {
		return dockerRunner.Close()
	}
	return nil
}
