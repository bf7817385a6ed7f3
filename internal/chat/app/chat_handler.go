package app

import (
	"context"
	"strings"

	"marketplace_chat_service/internal/chat/domain"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"
	"marketplace_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConversationService operations served over REST
type ConversationService interface {
	OpenConversation(ctx context.Context, buyerID, listingID, sellerID string) (*domain.ConversationSummary, bool, error)
	ListConversations(ctx context.Context, identity string) ([]domain.ConversationSummary, error)
	History(ctx context.Context, conversationID, identity string) ([]domain.MessageView, error)
	PostMessage(ctx context.Context, conversationID, senderID, content string) (*domain.MessageView, error)
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
}

// CreateConversationReq body of POST /conversations
type CreateConversationReq struct {
	ListingID string `json:"listingId"`
	SellerID  string `json:"sellerId"`
}

// PostMessageReq body of POST /conversations/:id/messages
type PostMessageReq struct {
	Content string `json:"content"`
}

// MarkReadRes body of PUT /conversations/:id/read
type MarkReadRes struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorRes error envelope
type ErrorRes struct {
	Error string `json:"error"`
}

// ChatHandler conversation REST endpoints
type ChatHandler struct {
	chat ConversationService
}

// NewChatHandler create ChatHandler
func NewChatHandler(chat ConversationService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ListConversations list the caller's conversations
// @Summary List conversations
// @Description Conversations the caller participates in, newest activity first, with unread counts
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ConversationSummary
// @Failure 401 {object} ErrorRes
// @Failure 500 {object} ErrorRes
// @Router /conversations [get]
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	summaries, err := h.chat.ListConversations(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summaries)
}

// CreateConversation open or reuse the buyer's conversation for a listing
// @Summary Open conversation
// @Description Returns 201 when created, 200 when the conversation already existed
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateConversationReq true "listing and seller"
// @Success 200 {object} domain.ConversationSummary
// @Success 201 {object} domain.ConversationSummary
// @Failure 400 {object} ErrorRes
// @Failure 404 {object} ErrorRes
// @Router /conversations [post]
func (h *ChatHandler) CreateConversation(c *fiber.Ctx) error {
	var req CreateConversationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorRes{Error: "invalid request"})
	}

	summary, created, err := h.chat.OpenConversation(c.UserContext(), middlewares.MemberID(c),
		strings.TrimSpace(req.ListingID), strings.TrimSpace(req.SellerID))
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(summary)
}

// History messages of one conversation
// @Summary Conversation history
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "conversation id"
// @Success 200 {array} domain.MessageView
// @Failure 404 {object} ErrorRes
// @Router /conversations/{id}/messages [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	msgs, err := h.chat.History(c.UserContext(), c.Params("id"), middlewares.MemberID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// PostMessage send a message
// @Summary Send message
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "conversation id"
// @Param request body PostMessageReq true "message content"
// @Success 201 {object} domain.MessageView
// @Failure 400 {object} ErrorRes
// @Failure 403 {object} ErrorRes
// @Failure 404 {object} ErrorRes
// @Router /conversations/{id}/messages [post]
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	var req PostMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorRes{Error: "invalid request"})
	}

	view, err := h.chat.PostMessage(c.UserContext(), c.Params("id"), middlewares.MemberID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// MarkRead mark the counterpart's messages read
// @Summary Mark messages read
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "conversation id"
// @Success 200 {object} MarkReadRes
// @Failure 403 {object} ErrorRes
// @Failure 404 {object} ErrorRes
// @Router /conversations/{id}/read [put]
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	if _, err := h.chat.MarkRead(c.UserContext(), c.Params("id"), middlewares.MemberID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MarkReadRes{Success: true, Message: "Messages marked as read"})
}

func respondError(c *fiber.Ctx, err error) error {
	status := errprocess.StatusCode(err)
	if status >= fiber.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(ErrorRes{Error: errprocess.PublicMessage(err)})
}
