// http/handlers.go
package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"

	"github.com/ViniZap4/moodlog-server/domain"
	"github.com/ViniZap4/moodlog-server/events"
	"github.com/ViniZap4/moodlog-server/stats"
)

type statsResponse struct {
	stats.Summary
	Chart []stats.Bar `json:"chart"`
}

type createMoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

func (s *Server) handleLabels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.Moods})
}

// snapshot reads the log for display; read failures degrade to an empty
// history and are reported in meta rather than as an error status.
func (s *Server) snapshot(c *fiber.Ctx) (domain.Log, fiber.Map) {
	meta := fiber.Map{}
	entries, err := s.store.ReadAll(c.UserContext())
	if err != nil {
		s.log.Warn().Err(err).Msg("serving empty mood history")
		meta["degraded"] = true
	}
	meta["count"] = len(entries)
	return entries, meta
}

func (s *Server) handleListMoods(c *fiber.Ctx) error {
	entries, meta := s.snapshot(c)

	switch strings.ToLower(c.Query("order", "desc")) {
	case "desc":
		entries = entries.NewestFirst()
	case "asc":
	default:
		return fiber.NewError(fiber.StatusBadRequest, "order must be asc or desc")
	}

	switch strings.ToLower(c.Query("format", "json")) {
	case "json":
		return c.JSON(fiber.Map{"data": entries, "meta": meta})
	case "yaml":
		out, err := yaml.Marshal(entries)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("encode yaml: %v", err))
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(out)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "format must be json or yaml")
	}
}

func (s *Server) handleCreateMood(c *fiber.Ctx) error {
	var payload createMoodRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	mood, err := domain.ParseMood(payload.Mood)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	entry, err := domain.NewEntry(mood, payload.Note, s.cfg.Now())
	if errors.Is(err, domain.ErrEmptyNote) {
		return fiber.NewError(fiber.StatusBadRequest, "Please enter a note before saving.")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := s.store.Append(c.UserContext(), entry); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, fmt.Sprintf("mood not saved: %v", err))
	}

	s.hub.Broadcast(events.MoodRecorded, &entry)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": entry})
}

func (s *Server) handleClearMoods(c *fiber.Ctx) error {
	if err := s.store.Clear(c.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, fmt.Sprintf("mood history not cleared: %v", err))
	}

	s.hub.Broadcast(events.MoodsCleared, nil)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	entries, meta := s.snapshot(c)
	summary := stats.Compute(entries)
	return c.JSON(fiber.Map{
		"data": statsResponse{Summary: summary, Chart: summary.Bars()},
		"meta": meta,
	})
}

// upgradeStream lets only websocket handshakes through to handleStream.
func (s *Server) upgradeStream(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// handleStream relays hub messages to a websocket client until the client
// goes away or the hub stops.
func (s *Server) handleStream(conn *websocket.Conn) {
	msgs, cancel := s.hub.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg map[string]interface{}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msgType, ok := msg["type"].(string); ok && msgType == "subscribe" {
				s.log.Debug().Msg("stream client subscribed")
			}
		}
	}()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Warn().Err(err).Msg("websocket write error")
				return
			}
		case <-closed:
			return
		}
	}
}
