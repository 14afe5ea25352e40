package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
	"github.com/stiftly/foundation_ledger_app/internal/middleware"
)

// entryHandler handles HTTP requests related to journal entries.
type entryHandler struct {
	entryService portssvc.EntrySvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(es portssvc.EntrySvcFacade) *entryHandler {
	return &entryHandler{
		entryService: es,
	}
}

// RegisterEntryRoutes registers journal entry routes nested under a specific foundation.
func RegisterEntryRoutes(rg *gin.RouterGroup, entryService portssvc.EntrySvcFacade) {
	h := newEntryHandler(entryService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entry_id", h.getEntry)
		entries.POST("/:entry_id/post", h.postEntry)
		entries.POST("/:entry_id/reverse", h.reverseEntry)
	}
}

// createEntry godoc
// @Summary Create a journal entry
// @Description Validates and creates a new draft journal entry with its lines, allocating the next entry number.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   entry body dto.CreateEntryRequest true "Entry header and lines"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Validation failed"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create entry"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/entries [post]
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), foundationID, req, userID)
	if err != nil {
		respondEntryError(c, logger, err, "Failed to create entry")
		return
	}

	logger.Info("Entry created successfully",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a page of journal entries for a foundation, newest first. Reversed entries and their reversals are hidden unless includeReversals is set.
// @Tags entries
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Param   includeReversals query bool false "Include reversed entries and reversals"
// @Param   includeLines query bool false "Include each entry's lines"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, nextToken, err := h.entryService.ListEntries(c.Request.Context(), foundationID, userID, params.Limit, params.NextToken, params.IncludeReversals, params.IncludeLines)
	if err != nil {
		respondEntryError(c, logger, err, "Failed to list entries")
		return
	}

	resp := dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i, entry := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entry)
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a journal entry with its lines.
// @Tags entries
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/entries/{entry_id} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.GetEntryByID(c.Request.Context(), foundationID, entryID, userID)
	if err != nil {
		respondEntryError(c, logger, err, "Failed to get entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Transitions a draft entry to posted, applying its amounts to account balances. Posting a non-draft entry fails with a conflict and changes nothing.
// @Tags entries
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Entry fails validation"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not in draft status"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/entries/{entry_id}/post [post]
func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.PostEntry(c.Request.Context(), foundationID, entryID, userID)
	if err != nil {
		respondEntryError(c, logger, err, "Failed to post entry")
		return
	}

	logger.Info("Entry posted successfully",
		slog.String("entry_id", entryID),
		slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted journal entry
// @Description Creates and posts a reversing entry mirroring the original with debit and credit sides swapped, and marks the original reversed.
// @Tags entries
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   entry_id path string true "Entry ID"
// @Success 201 {object} dto.EntryResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not posted or is itself a reversal"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/entries/{entry_id}/reverse [post]
func (h *entryHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.entryService.ReverseEntry(c.Request.Context(), foundationID, entryID, userID)
	if err != nil {
		respondEntryError(c, logger, err, "Failed to reverse entry")
		return
	}

	logger.Info("Entry reversed successfully",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// respondEntryError maps service errors on entry operations to HTTP responses.
func respondEntryError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Entry validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrTimeout):
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Operation timed out"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
