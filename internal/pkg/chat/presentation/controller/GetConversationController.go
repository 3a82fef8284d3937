package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-parley/internal/pkg/chat/application/usecase"
	"go-parley/internal/pkg/chat/persistence/repository/adapter"
	userAdapter "go-parley/internal/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetConversationController serves the conversation detail view with its
// resolved member list (one controller per endpoint).
type GetConversationController struct {
	UC *usecase.GetConversationUseCase
}

func NewGetConversationController(pool *pgxpool.Pool) *GetConversationController {
	repo := adapter.NewPgChatRepository(pool)
	users := userAdapter.NewPgUserRepository(pool)
	return &GetConversationController{UC: usecase.NewGetConversationUseCase(repo, users)}
}

func (h *GetConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		detail, err := h.UC.Execute(ctx, usecase.GetConversationInput{ConversationID: conversationID})
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, usecase.ErrConversationNotFound):
				status = http.StatusNotFound
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		members := make([]gin.H, 0, len(detail.Members))
		for _, m := range detail.Members {
			members = append(members, gin.H{
				"id":        m.ID,
				"username":  m.Username,
				"last_seen": m.LastSeen,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         detail.Conversation.ID,
			"created_at": detail.Conversation.CreatedAt,
			"updated_at": detail.Conversation.UpdatedAt,
			"members":    members,
		})
	}
}
