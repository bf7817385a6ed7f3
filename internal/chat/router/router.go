package router

import (
	"context"

	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes register chat REST and websocket routes
// @title Marketplace Chat Service API
// @version 1.0
// @description Buyer/seller conversations over REST and websocket
// @host localhost:8082
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func RegisterRoutes(
	r *fiber.App,
	auth middlewares.Authenticator,
	chatHandler *app.ChatHandler,
	chatWebsocket *app.ChatWebsocketHandler,
	presence app.OnlineLister,
) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", app.ConnectCheck)
	r.Post("/debug", app.DebugLogFlag)
	r.Get("/online", app.OnlineUsers(presence))

	conversations := r.Group("/conversations", middlewares.JWTMiddleware(auth))
	conversations.Get("/", chatHandler.ListConversations)
	conversations.Post("/", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.History)
	conversations.Post("/:id/messages", chatHandler.PostMessage)
	conversations.Put("/:id/read", chatHandler.MarkRead)

	r.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}, middlewares.JWTMiddleware(auth))
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
