package server

import (
	"fmt"
	"net/http"

	"github.com/Houeta/promo-relay/internal/matcher"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// handleWebhook ingests one Telegram update: authorize, extract store
// links, normalize, enqueue and confirm back to the originating chat.
func (s *Server) handleWebhook(c echo.Context) error {
	if c.Param("secret") != s.cfg.Secret {
		return c.JSON(http.StatusForbidden, echo.Map{"detail": "Invalid secret"})
	}

	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid update payload"})
	}

	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}

	ctx := c.Request().Context()

	if s.cfg.AllowedUserID != 0 && (msg.From == nil || msg.From.ID != s.cfg.AllowedUserID) {
		s.log.InfoContext(ctx, "Ignoring message from unauthorized sender", "user_id", senderID(msg))
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	links := matcher.Extract(text)
	if len(links) == 0 {
		entities := msg.Entities
		if len(entities) == 0 {
			entities = msg.CaptionEntities
		}
		links = matcher.FromEntities(text, entities)
	}

	for i := range links {
		links[i] = s.norm.Normalize(links[i])
	}

	added, err := s.queue.Enqueue(ctx, links)
	if err != nil {
		// Persistence is best-effort; the operator still gets the count.
		s.log.ErrorContext(ctx, "Failed to persist queue", "error", err)
	}

	reply := "Não encontrei nenhum link do Mercado Livre na mensagem (ou já estavam na fila)."
	if added > 0 {
		reply = fmt.Sprintf("✅ Recebi %d link(s). Eles serão enviados gradualmente para o canal.", added)
	}
	if msg.Chat != nil {
		if err = s.sender.Send(ctx, msg.Chat.ID, reply); err != nil {
			s.log.ErrorContext(ctx, "Failed to send confirmation", "chat_id", msg.Chat.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "added": added})
}

// handleRunOffers triggers one link-queue dispatch cycle.
func (s *Server) handleRunOffers(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := s.dispatcher.DispatchQueue(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Queue dispatch failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "result": result})
}

// handleRunSearch triggers one search-offer dispatch cycle.
func (s *Server) handleRunSearch(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := s.dispatcher.DispatchOffers(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Offer dispatch failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "result": result})
}

func senderID(msg *tgbotapi.Message) int64 {
	if msg.From == nil {
		return 0
	}

	return msg.From.ID
}
