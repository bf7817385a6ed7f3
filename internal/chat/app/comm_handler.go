package app

import (
	"fmt"
	"strconv"

	"marketplace_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OnlineLister presence snapshot
type OnlineLister interface {
	ListOnline() []string
}

// ConnectCheck liveness
// @Summary Check chat service status
// @Tags Shared
// @Success 200 {string} string "chat service start!"
// @Router / [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("chat service start!")
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	statusStr := c.Query("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}

// OnlineUsers identities with a live connection on this process
// @Summary Online users
// @Tags Shared
// @Produce json
// @Success 200 {array} string
// @Router /online [get]
func OnlineUsers(presence OnlineLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(presence.ListOnline())
	}
}
