package http

import (
	cport "go-parley/internal/infrastructure/cache/port"
	qport "go-parley/internal/infrastructure/queue/port"
	"go-parley/internal/infrastructure/realtime"
	"go-parley/internal/pkg/chat/application/presence"
	"go-parley/internal/pkg/chat/application/usecase"
	"go-parley/internal/pkg/chat/presentation/controller"
	userAdapter "go-parley/internal/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies carries the shared infrastructure the chat endpoints need.
// Cache and Queue are optional; a nil cache disables the pair lookup cache
// and a nil queue makes last-seen persistence synchronous.
type Dependencies struct {
	Pool    *pgxpool.Pool
	Codec   usecase.MessageCodec
	Router  *realtime.Router
	Cache   cport.Cache
	Queue   qport.Client
	Limiter *realtime.FrameLimiter
}

// RegisterRoutes registers the chat endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Dependencies) {
	presenceBC := presence.NewBroadcaster(deps.Router, userAdapter.NewPgUserRepository(deps.Pool), deps.Queue)

	initiateCtl := controller.NewInitiateConversationController(deps.Pool, deps.Cache)
	getConvCtl := controller.NewGetConversationController(deps.Pool)
	getMsgCtl := controller.NewGetMessageController(deps.Pool, deps.Codec)
	participantsCtl := controller.NewListParticipantsController(deps.Pool)
	userConvsCtl := controller.NewListUserConversationsController(deps.Pool, deps.Codec)
	socketCtl := controller.NewChatSocketController(deps.Pool, deps.Codec, deps.Router, presenceBC, deps.Limiter)

	// POST /api/v1/conversations/initiate -> resolve the pair conversation
	g.POST("/conversations/initiate", initiateCtl.Handle())

	// GET /api/v1/users/:userId/conversations -> a user's conversation
	// list with last-message previews. Lives under /users because gin's
	// route tree cannot mix a static "user" segment with the
	// :conversationId wildcard below.
	g.GET("/users/:userId/conversations", userConvsCtl.Handle())

	// GET /api/v1/conversations/:conversationId -> detail with members
	g.GET("/conversations/:conversationId", getConvCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> decrypted history
	g.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())

	// GET /api/v1/conversations/:conversationId/participants -> member ids
	g.GET("/conversations/:conversationId/participants", participantsCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}
