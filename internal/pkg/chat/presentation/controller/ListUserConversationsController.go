package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-parley/internal/pkg/chat/application/usecase"
	"go-parley/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListUserConversationsController serves a user's conversation list, most
// recently active first, with a decrypted last-message preview (one
// controller per endpoint).
type ListUserConversationsController struct {
	UC *usecase.ListUserConversationsUseCase
}

func NewListUserConversationsController(pool *pgxpool.Pool, codec usecase.MessageCodec) *ListUserConversationsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListUserConversationsController{UC: usecase.NewListUserConversationsUseCase(repo, codec)}
}

func (h *ListUserConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		items, err := h.UC.Execute(ctx, usecase.ListUserConversationsInput{
			UserID: userID,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(items))
		for _, item := range items {
			entry := gin.H{
				"id":           item.Conversation.ID,
				"created_at":   item.Conversation.CreatedAt,
				"updated_at":   item.Conversation.UpdatedAt,
				"last_message": nil,
			}
			if item.LastMessage != nil {
				entry["last_message"] = gin.H{
					"id":         item.LastMessage.ID,
					"author_id":  item.LastMessage.AuthorID,
					"content":    item.LastMessage.Content,
					"created_at": item.LastMessage.CreatedAt,
				}
			}
			out = append(out, entry)
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": out,
			"limit":         limit,
			"offset":        offset,
			"count":         len(out),
		})
	}
}
