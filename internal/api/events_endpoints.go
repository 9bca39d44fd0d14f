package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alienx/bianca/internal/store"
)

// ConversationEventsHandler handles the event replay endpoints.
type ConversationEventsHandler struct {
	repo *store.ConversationEventsRepo
}

// NewConversationEventsHandler creates a new events handler.
func NewConversationEventsHandler(db *sql.DB) *ConversationEventsHandler {
	return &ConversationEventsHandler{
		repo: store.NewConversationEventsRepo(db),
	}
}

// GetConversationEvents handles GET /api/conversations/:id/events
// (polling endpoint with cursor-based pagination).
func (h *ConversationEventsHandler) GetConversationEvents(c echo.Context) error {
	conversationID := c.Param("id")
	if conversationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Conversation ID is required")
	}

	cursor := &store.ListEventsCursor{Limit: 50}
	if sinceStr := c.QueryParam("since"); sinceStr != "" {
		if parsedTime, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			cursor.Since = &parsedTime
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 1000 {
			cursor.Limit = parsedLimit
		}
	}

	events, err := h.repo.ListEvents(c.Request().Context(), conversationID, cursor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve events")
	}

	// Ensure events is a non-nil slice so JSON encodes to []
	if events == nil {
		events = make([]*store.ConversationEvent, 0)
	}

	response := map[string]interface{}{
		"events": events,
		"meta": map[string]interface{}{
			"conversationId": conversationID,
			"count":          len(events),
			"limit":          cursor.Limit,
		},
	}
	if cursor.Since != nil {
		response["meta"].(map[string]interface{})["since"] = cursor.Since.Format(time.RFC3339)
	}

	return c.JSON(http.StatusOK, response)
}

// GetConversationSummary handles GET /api/conversations/:id/summary,
// returning event counts grouped by type.
func (h *ConversationEventsHandler) GetConversationSummary(c echo.Context) error {
	conversationID := c.Param("id")
	if conversationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Conversation ID is required")
	}

	counts, err := h.repo.CountEventsByType(c.Request().Context(), conversationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve conversation summary")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversationId": conversationID,
		"eventCounts":    counts,
	})
}
