package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/plumechat/plume/internal/memory"
)

// MemoryHandler exposes per-user memory CRUD and the rendered context
// preview.
type MemoryHandler struct {
	service *memory.Service
	logger  *slog.Logger
}

func NewMemoryHandler(log *slog.Logger, service *memory.Service) *MemoryHandler {
	return &MemoryHandler{
		service: service,
		logger:  log.With(slog.String("handler", "memory")),
	}
}

func (h *MemoryHandler) Register(e *echo.Echo) {
	group := e.Group("/users/:user_id/memories")
	group.GET("", h.List)
	group.PUT("", h.Upsert)
	group.DELETE("/:key", h.Delete)
	group.GET("/context", h.ContextPreview)
}

type memoryUpsertPayload struct {
	Category   string `json:"category" validate:"required,oneof=personal preference context fact"`
	Key        string `json:"key" validate:"required"`
	Value      string `json:"value" validate:"required"`
	Importance int    `json:"importance" validate:"min=0,max=10"`
}

func (h *MemoryHandler) List(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	input := memory.QueryInput{UserID: userID}
	if raw := c.QueryParam("min_importance"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "min_importance must be an integer")
		}
		input.MinImportance = v
	}
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		input.Limit = v
	}

	records, err := h.service.Query(c.Request().Context(), input)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if records == nil {
		records = []memory.Record{}
	}
	return c.JSON(http.StatusOK, records)
}

func (h *MemoryHandler) Upsert(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var payload memoryUpsertPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	record, err := h.service.Upsert(c.Request().Context(), memory.UpsertInput{
		UserID:     userID,
		Category:   memory.Category(payload.Category),
		Key:        payload.Key,
		Value:      payload.Value,
		Importance: payload.Importance,
	})
	if err != nil {
		if errors.Is(err, memory.ErrInvalidImportance) || errors.Is(err, memory.ErrInvalidCategory) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, record)
}

func (h *MemoryHandler) Delete(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}

	if err := h.service.Delete(c.Request().Context(), userID, key); err != nil {
		if errors.Is(err, memory.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "memory not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ContextPreview renders the same prose block the chat pipeline injects,
// so operators can inspect what the model will see for a user.
func (h *MemoryHandler) ContextPreview(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	rendered, err := h.service.LoadContext(c.Request().Context(), userID, memory.ContextOptions{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"context": rendered})
}

func requireUserID(c echo.Context) (string, error) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	return userID, nil
}
