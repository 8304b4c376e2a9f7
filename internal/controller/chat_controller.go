package controller

import (
	"errors"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetUserMessages(ctx *fiber.Ctx) error
	GetTickets(ctx *fiber.Ctx) error
	MarkAsRead(ctx *fiber.Ctx) error
	GetUnreadCount(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/", c.SendMessage)
	h.Get("/user/:userId", c.GetUserMessages)
	h.Get("/admin/tickets", serverutils.JwtMiddleware, serverutils.AdminMiddleware, c.GetTickets)
	h.Put("/mark-as-read/:userId", c.MarkAsRead)
	h.Get("/unread-count/:userId", c.GetUnreadCount)
}

// SendMessage persists a draft and returns the stored record. The widget and
// console render the copy they get back from their own room subscription;
// this response is the sender's immediate confirmation.
func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	res, err := c.service.SendMessage(ctx.UserContext(), &req)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *chatController) GetUserMessages(ctx *fiber.Ctx) error {
	userID, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user id"})
	}

	messages, err := c.service.GetUserMessages(ctx.UserContext(), userID)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(messages)
}

func (c *chatController) GetTickets(ctx *fiber.Ctx) error {
	tickets, err := c.service.GetTickets(ctx.UserContext())
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(tickets)
}

func (c *chatController) MarkAsRead(ctx *fiber.Ctx) error {
	userID, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user id"})
	}

	var req dto.MarkAsReadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	modified, err := c.service.MarkAsRead(ctx.UserContext(), userID, req.SenderRole)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(dto.MarkAsReadResponse{ModifiedCount: modified})
}

func (c *chatController) GetUnreadCount(ctx *fiber.Ctx) error {
	userID, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user id"})
	}

	count, err := c.service.GetUnreadCount(ctx.UserContext(), userID, ctx.Query("role", "user"))
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(dto.UnreadCountResponse{UnreadCount: count})
}

// chatError maps service errors onto the wire. Validation problems are the
// caller's fault; everything else is a store failure.
func chatError(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, service.ErrValidation) {
		status = fiber.StatusBadRequest
	}
	return ctx.Status(status).JSON(fiber.Map{"message": err.Error()})
}
