package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
	"github.com/stiftly/foundation_ledger_app/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	entryService   portssvc.EntrySvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, es portssvc.EntrySvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
		entryService:   es,
	}
}

// registerAccountRoutes registers account routes nested under a specific foundation.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, entryService portssvc.EntrySvcFacade) {
	h := newAccountHandler(accountService, entryService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.POST("/bootstrap", h.bootstrapChart)
		accounts.GET("/by-number/:account_number", h.getAccountByNumber)
		accounts.GET("/:account_id", h.getAccount)
		accounts.PUT("/:account_id", h.updateAccount)
		accounts.DELETE("/:account_id", h.deactivateAccount)
		accounts.GET("/:account_id/lines", h.listAccountLines)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates a new account in the foundation's chart of accounts. Requires admin role.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Account number already exists"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), foundationID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Account number already exists in this foundation"})
		default:
			logger.Error("Failed to create account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts in a foundation
// @Description Retrieves the active accounts of a foundation's chart, ordered by account number.
// @Tags accounts
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   limit query int false "Page size (max 100)"
// @Param   offset query int false "Offset"
// @Success 200 {array} dto.AccountResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), foundationID, userID, limit, offset)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else {
			logger.Error("Failed to list accounts from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// bootstrapChart godoc
// @Summary Seed the standard chart of accounts
// @Description Seeds the standard chart of accounts into the foundation. Accounts that already exist are skipped, so re-running is safe. Requires admin role.
// @Tags accounts
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Success 200 {object} dto.BootstrapChartResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to bootstrap chart"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts/bootstrap [post]
func (h *accountHandler) bootstrapChart(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	created, err := h.accountService.BootstrapChartOfAccounts(c.Request.Context(), foundationID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else {
			logger.Error("Failed to bootstrap chart in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to bootstrap chart of accounts"})
		}
		return
	}

	logger.Info("Chart of accounts bootstrapped", slog.Int("accounts_created", created))
	c.JSON(http.StatusOK, dto.BootstrapChartResponse{AccountsCreated: created})
}

// getAccount godoc
// @Summary Get account details
// @Description Retrieves a single account by ID within a foundation.
// @Tags accounts
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	accountID := c.Param("account_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), foundationID, accountID, userID)
	if err != nil {
		respondAccountError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountByNumber godoc
// @Summary Get account by account number
// @Description Retrieves a single account by its account number within a foundation.
// @Tags accounts
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   account_number path string true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts/by-number/{account_number} [get]
func (h *accountHandler) getAccountByNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	accountNumber := c.Param("account_number")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), foundationID, accountNumber, userID)
	if err != nil {
		respondAccountError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update account details
// @Description Updates an account's name, description, or active flag. The account number, type, and currency are immutable. Requires admin role.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   account_id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	accountID := c.Param("account_id")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), foundationID, accountID, req, userID)
	if err != nil {
		respondAccountError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive. The account keeps its balance and history but rejects new entry lines. Requires admin role.
// @Tags accounts
// @Param   foundation_id path string true "Foundation ID"
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts/{account_id} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	accountID := c.Param("account_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), foundationID, accountID, userID); err != nil {
		respondAccountError(c, logger, err)
		return
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	c.Status(http.StatusNoContent)
}

// listAccountLines godoc
// @Summary List posted lines for an account
// @Description Retrieves a page of posted journal entry lines touching the account, newest first. Reversal entries are excluded.
// @Tags accounts
// @Produce  json
// @Param   foundation_id path string true "Foundation ID"
// @Param   account_id path string true "Account ID"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListEntryLinesResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /foundations/{foundation_id}/accounts/{account_id}/lines [get]
func (h *accountHandler) listAccountLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	foundationID := c.Param("foundation_id")
	accountID := c.Param("account_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListEntryLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	lines, nextToken, err := h.entryService.ListLinesByAccount(c.Request.Context(), foundationID, accountID, userID, params.Limit, params.NextToken)
	if err != nil {
		respondAccountError(c, logger, err)
		return
	}

	resp := dto.ListEntryLinesResponse{
		Lines:     dto.ToEntryLineResponses(lines),
		NextToken: nextToken,
	}
	c.JSON(http.StatusOK, resp)
}

// respondAccountError maps service errors on account operations to HTTP responses.
func respondAccountError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Account operation failed in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account operation failed"})
	}
}
