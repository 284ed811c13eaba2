package controller

import (
	"os"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/pkg/serverutils"
	"rag-assistant-be/internal/service"
	internalWS "rag-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	SubmitStreaming(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Discard(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type chatController struct {
	conversationService service.IConversationService
	hub                 *internalWS.Hub
	logger              logger.ILogger
}

func NewChatController(conversationService service.IConversationService, hub *internalWS.Hub, log logger.ILogger) IChatController {
	return &chatController{
		conversationService: conversationService,
		hub:                 hub,
		logger:              log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")

	// The websocket handshake authenticates itself; everything else goes
	// through the middleware.
	h.Get("ws", c.ServeWs)

	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Submit)
	h.Post("stream", c.SubmitStreaming)
	h.Get("history", c.History)
	h.Delete("clear", c.Clear)
	h.Delete("session", c.Discard)
}

func (c *chatController) Submit(ctx *fiber.Ctx) error {
	sessionKey := ctx.Locals("session_key").(string)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.SendChat(ctx.Context(), sessionKey, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat processed", res))
}

func (c *chatController) SubmitStreaming(ctx *fiber.Ctx) error {
	sessionKey := ctx.Locals("session_key").(string)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.SendChatStreaming(ctx.Context(), sessionKey, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Chat accepted", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionKey := ctx.Locals("session_key").(string)

	// A limit switches to the paged read; without one the whole transcript
	// comes back as before.
	if limit := ctx.QueryInt("limit", 0); limit > 0 {
		page, err := c.conversationService.GetChatHistoryPage(ctx.Context(), sessionKey, limit, ctx.QueryInt("offset", 0))
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Chat history page", page))
	}

	res, err := c.conversationService.GetChatHistory(ctx.Context(), sessionKey)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	sessionKey := ctx.Locals("session_key").(string)

	if err := c.conversationService.ClearChat(ctx.Context(), sessionKey); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat cleared", nil))
}

func (c *chatController) Discard(ctx *fiber.Ctx) error {
	sessionKey := ctx.Locals("session_key").(string)

	if err := c.conversationService.DiscardSession(ctx.Context(), sessionKey); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session discarded", nil))
}

// ServeWs upgrades the connection and attaches it to the hub for streamed
// answers. Browsers cannot set headers on the handshake, so the token comes
// from the query string first.
func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.logger.Warn("ChatController", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token claims"))
	}

	sessionKey, _ := claims["session_key"].(string)
	if sessionKey == "" {
		sessionKey, _ = claims["sub"].(string)
	}
	if sessionKey == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Token missing session identity"))
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ChatController", "WebSocket session started", map[string]interface{}{"session_key": sessionKey})
			internalWS.ServeWs(c.hub, conn, sessionKey)
			c.logger.Info("ChatController", "WebSocket session ended", map[string]interface{}{"session_key": sessionKey})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
