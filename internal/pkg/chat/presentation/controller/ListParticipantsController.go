package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-parley/internal/pkg/chat/application/usecase"
	"go-parley/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListParticipantsController serves the raw participant id list for a
// conversation (one controller per endpoint).
type ListParticipantsController struct {
	UC *usecase.ListParticipantsUseCase
}

func NewListParticipantsController(pool *pgxpool.Pool) *ListParticipantsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListParticipantsController{UC: usecase.NewListParticipantsUseCase(repo)}
}

func (h *ListParticipantsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ids, err := h.UC.Execute(ctx, usecase.ListParticipantsInput{ConversationID: conversationID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation_id": conversationID,
			"participants":    ids,
		})
	}
}
