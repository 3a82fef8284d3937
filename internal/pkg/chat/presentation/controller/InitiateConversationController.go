package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	cport "go-parley/internal/infrastructure/cache/port"
	chat "go-parley/internal/pkg/chat/application/domain"
	"go-parley/internal/pkg/chat/application/usecase"
	"go-parley/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InitiateConversationController resolves the direct conversation between
// two users, creating it on first contact (one controller per endpoint).
type InitiateConversationController struct {
	UC *usecase.ResolveConversationUseCase
}

func NewInitiateConversationController(pool *pgxpool.Pool, cache cport.Cache) *InitiateConversationController {
	repo := adapter.NewPgChatRepository(pool)
	return &InitiateConversationController{UC: usecase.NewResolveConversationUseCase(repo, cache)}
}

type initiateConversationRequest struct {
	UserA string `json:"user_a" binding:"required"`
	UserB string `json:"user_b" binding:"required"`
}

func (h *InitiateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req initiateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_a and user_b are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.ResolveConversationInput{UserA: req.UserA, UserB: req.UserB})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			} else if errors.Is(err, chat.ErrSelfConversation) {
				status = http.StatusUnprocessableEntity
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         conv.ID,
			"created_at": conv.CreatedAt,
			"updated_at": conv.UpdatedAt,
		})
	}
}
