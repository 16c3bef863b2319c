package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/history"
	"lifegraph/backend/internal/orchestrator"
	"lifegraph/backend/internal/registry"
	"lifegraph/backend/internal/triage"
	"lifegraph/backend/pkg/config"
	apperrors "lifegraph/backend/pkg/errors"
	"lifegraph/backend/pkg/logger"
)

const maxQueryLength = 2000

var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting ingestion API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize dependencies
	store, err := graph.NewStore(cfg)
	if err != nil {
		log.Fatal("Failed to open graph store", zap.Error(err))
	}
	defer store.Close()

	cache, err := history.NewCache(cfg)
	if err != nil {
		log.Fatal("Failed to open history cache", zap.Error(err))
	}
	defer cache.Close()

	triageClient := triage.NewAdapter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID, cfg.TriageTimeout)
	reg := registry.New(store)
	orch := orchestrator.New(triageClient, reg, store, cache)

	router := newRouter(cfg, log, orch, store, cache)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Run the server and the signal watcher together; either one ending
	// stops the other.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("Server terminated with error", zap.Error(err))
	}
	log.Info("Server exited")
}

func newRouter(cfg *config.Config, log *zap.Logger, orch *orchestrator.Orchestrator, store graph.Store, cache history.Cache) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Ingest a user statement
		api.POST("/ingest", func(c *gin.Context) {
			ctx := c.Request.Context()

			var req struct {
				Query          string `json:"query" binding:"required"`
				ConversationID string `json:"conversation_id" binding:"required"`
				OwnerID        string `json:"owner_id" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if len(req.Query) > maxQueryLength {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("query exceeds %d characters", maxQueryLength),
				})
				return
			}
			if !conversationIDPattern.MatchString(req.ConversationID) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "conversation_id may only contain letters, digits, hyphens and underscores",
				})
				return
			}

			result, err := orch.Process(ctx, orchestrator.Request{
				Query:          req.Query,
				ConversationID: req.ConversationID,
				OwnerID:        req.OwnerID,
			})
			if err != nil {
				writeError(c, cfg, log, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"status":        "ok",
				"response_text": result.SuggestedResponse,
				"entity_id":     result.EntityID,
				"components":    result.Components,
			})
		})

		// Fetch an entity
		api.GET("/entities/:id", func(c *gin.Context) {
			entity, err := store.GetEntity(c.Request.Context(), c.Param("id"))
			if err != nil {
				if _, ok := err.(graph.ErrEntityNotFound); ok {
					c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
					return
				}
				log.Error("Failed to fetch entity", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entity"})
				return
			}
			c.JSON(http.StatusOK, entity)
		})

		// List an entity's edges in both directions
		api.GET("/entities/:id/edges", func(c *gin.Context) {
			ctx := c.Request.Context()
			entityID := c.Param("id")

			outgoing, err := store.OutgoingRelationships(ctx, entityID, graph.DefaultQueryLimit)
			if err != nil {
				log.Error("Failed to list outgoing edges", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list edges"})
				return
			}
			incoming, err := store.IncomingRelationships(ctx, entityID, graph.DefaultQueryLimit)
			if err != nil {
				log.Error("Failed to list incoming edges", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list edges"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"outgoing": outgoing,
				"incoming": incoming,
			})
		})

		// List entities of a type for an owner
		api.GET("/entities", func(c *gin.Context) {
			ownerID := c.Query("owner_id")
			entityType := c.Query("type")
			if ownerID == "" || entityType == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id and type are required"})
				return
			}

			entities, err := store.ListEntitiesByType(c.Request.Context(), ownerID, entityType, graph.DefaultQueryLimit)
			if err != nil {
				log.Error("Failed to list entities", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entities"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"entities": entities})
		})

		// Delete an entity and its edges
		api.DELETE("/entities/:id", func(c *gin.Context) {
			if err := store.DeleteEntity(c.Request.Context(), c.Param("id")); err != nil {
				log.Error("Failed to delete entity", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entity"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
		})

		// Recent turns of a conversation
		api.GET("/conversations/:id/history", func(c *gin.Context) {
			conversationID := c.Param("id")
			if !conversationIDPattern.MatchString(conversationID) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "conversation id may only contain letters, digits, hyphens and underscores",
				})
				return
			}

			turns, err := cache.Recent(c.Request.Context(), conversationID)
			if err != nil {
				log.Error("Failed to fetch conversation history", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
				return
			}
			if turns == nil {
				turns = []history.Turn{}
			}
			c.JSON(http.StatusOK, gin.H{"turns": turns})
		})
	}

	return router
}

// writeError maps the error taxonomy to HTTP statuses. Internal detail is
// only exposed when debug mode is on.
func writeError(c *gin.Context, cfg *config.Config, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Failed to process request"

	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case apperrors.IsErrorType(err, apperrors.ErrorTypeTriage):
		status = http.StatusBadGateway
		message = "Triage service failed"
	case apperrors.IsErrorType(err, apperrors.ErrorTypeOrchestration):
		status = http.StatusBadGateway
		message = "No part of the request could be processed"
	case apperrors.IsErrorType(err, apperrors.ErrorTypePersistence):
		message = "Failed to save results"
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Warn("Request rejected", zap.Error(err))
	}

	body := gin.H{"error": message}
	if cfg.Debug {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
