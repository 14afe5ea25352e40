package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
	"github.com/stiftly/foundation_ledger_app/internal/middleware"
)

// foundationHandler handles HTTP requests related to foundations.
type foundationHandler struct {
	foundationService portssvc.FoundationSvcFacade
}

// newFoundationHandler creates a new foundationHandler.
func newFoundationHandler(fs portssvc.FoundationSvcFacade) *foundationHandler {
	return &foundationHandler{
		foundationService: fs,
	}
}

// registerFoundationRoutes registers routes related to foundations and their
// members, plus the ACCOUNT and ENTRY routes nested under a specific foundation.
func registerFoundationRoutes(rg *gin.RouterGroup, foundationService portssvc.FoundationSvcFacade, accountService portssvc.AccountSvcFacade, entryService portssvc.EntrySvcFacade) {
	h := newFoundationHandler(foundationService)

	foundationsTopLevel := rg.Group("/foundations")
	{
		foundationsTopLevel.POST("", h.createFoundation)
		foundationsTopLevel.GET("", h.listUserFoundations)
	}

	foundationSpecific := rg.Group("/foundations/:foundation_id")
	{
		foundationSpecific.GET("", h.getFoundation)
		foundationSpecific.PUT("", h.updateFoundation)

		members := foundationSpecific.Group("/members")
		{
			members.POST("", h.addMember)
			members.GET("", h.listMembers)
		}

		registerAccountRoutes(foundationSpecific, accountService, entryService)
		RegisterEntryRoutes(foundationSpecific, entryService)
	}
}

// createFoundation godoc
// @Summary Create a new foundation
// @Description Creates a new foundation, assigns the creator as admin, and seeds the standard chart of accounts.
// @Tags foundations
// @Accept  json
// @Produce  json
// @Param   foundation body dto.CreateFoundationRequest true "Foundation details"
// @Success 201 {object} dto.FoundationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create foundation"
// @Security BearerAuth
// @Router /foundations [post]
func (h *foundationHandler) createFoundation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFoundationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFoundation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))

	newFoundation, err := h.foundationService.CreateFoundation(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create foundation in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create foundation"})
		return
	}

	logger.Info("Foundation created successfully", slog.String("foundation_id", newFoundation.FoundationID))
	c.JSON(http.StatusCreated, dto.ToFoundationResponse(newFoundation))
}

// listUserFoundations godoc
// @Summary List foundations for current user
// @Description Retrieves the foundations the authenticated user belongs to.
// @Tags foundations
// @Produce  json
// @Success 200 {object} dto.ListFoundationsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list foundations"
// @Security BearerAuth
// @Router /foundations [get]
func (h *foundationHandler) listUserFoundations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	foundations, err := h.foundationService.ListUserFoundations(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list foundations from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list foundations"})
		return
	}

	resp := dto.ListFoundationsResponse{Foundations: make([]dto.FoundationResponse, len(foundations))}
	for i, f := range foundations {
		resp.Foundations[i] = dto.ToFoundationResponse(&f)
	}
	c.JSON(http.StatusOK, resp)
}

// getFoundation godoc
// @Summary Get foundation details
// @Description Retrieves a single foundation by ID. The caller must be a member.
// @Tags foundations
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Success 200 {object} dto.FoundationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Foundation not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id} [get]
func (h *foundationHandler) getFoundation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.foundationService.AuthorizeUserAction(c.Request.Context(), foundationID, userID, domain.RoleReadOnly); err != nil {
		respondAuthzError(c, logger, err)
		return
	}

	foundation, err := h.foundationService.GetFoundationByID(c.Request.Context(), foundationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Foundation not found"})
		} else {
			logger.Error("Failed to get foundation from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get foundation"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToFoundationResponse(foundation))
}

// updateFoundation godoc
// @Summary Update foundation details
// @Description Updates a foundation's mutable fields. Requires admin role.
// @Tags foundations
// @Accept  json
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   foundation body dto.UpdateFoundationRequest true "Fields to update"
// @Success 200 {object} dto.FoundationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Foundation not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id} [put]
func (h *foundationHandler) updateFoundation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	var req dto.UpdateFoundationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	foundation, err := h.foundationService.UpdateFoundation(c.Request.Context(), foundationID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Foundation not found"})
		default:
			logger.Error("Failed to update foundation in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update foundation"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToFoundationResponse(foundation))
}

// addMember godoc
// @Summary Add a user to a foundation
// @Description Adds a specified user to a foundation with a given role (requires admin permission).
// @Tags foundations
// @Accept  json
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   member body dto.AddMemberRequest true "User ID and Role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden (caller is not admin)"
// @Failure 404 {object} map[string]string "Foundation or user not found"
// @Failure 500 {object} map[string]string "Failed to add member"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/members [post]
func (h *foundationHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	addingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(
		slog.String("adding_user_id", addingUserID),
		slog.String("foundation_id", foundationID),
		slog.String("target_user_id", req.UserID))

	err := h.foundationService.AddUserToFoundation(c.Request.Context(), addingUserID, foundationID, req.UserID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Foundation or user not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to add member in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		}
		return
	}

	logger.Info("Member added to foundation successfully", slog.String("role", string(req.Role)))
	c.Status(http.StatusNoContent)
}

// listMembers godoc
// @Summary List members of a foundation
// @Description Retrieves the members of a foundation. The caller must be a member.
// @Tags foundations
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Success 200 {array} dto.MemberResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list members"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/members [get]
func (h *foundationHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	members, err := h.foundationService.ListFoundationMembers(c.Request.Context(), userID, foundationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else {
			logger.Error("Failed to list members from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToListMembersResponse(members))
}

// respondAuthzError maps authorization failures to HTTP responses.
func respondAuthzError(c *gin.Context, logger *slog.Logger, err error) {
	if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	logger.Error("Authorization check failed", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
}
