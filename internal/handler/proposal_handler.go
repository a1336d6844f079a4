package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	"github.com/ChungangLions/backend/internal/service"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
	"github.com/ChungangLions/backend/pkg/response"
)

// ProposalHandler exposes the proposal lifecycle endpoints.
type ProposalHandler struct {
	proposals *service.ProposalService
	drafts    *service.DraftService
	exports   *service.ExportService
}

// NewProposalHandler constructs ProposalHandler. drafts and exports may be
// nil; the corresponding endpoints then fail with service unavailable.
func NewProposalHandler(proposals *service.ProposalService, drafts *service.DraftService, exports *service.ExportService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, drafts: drafts, exports: exports}
}

// Create godoc
// @Summary Create proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param payload body dto.CreateProposalRequest true "Proposal payload"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /proposals [post]
func (h *ProposalHandler) Create(c *gin.Context) {
	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}

	proposal, err := h.proposals.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, proposal)
}

// List godoc
// @Summary List proposals
// @Tags Proposals
// @Produce json
// @Param box query string false "Mailbox: all, inbox or sent"
// @Param status query string false "Filter by current status"
// @Param date_from query string false "Created on or after (YYYY-MM-DD)"
// @Param date_to query string false "Created on or before (YYYY-MM-DD)"
// @Param search query string false "Search title and contents"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /proposals [get]
func (h *ProposalHandler) List(c *gin.Context) {
	query := queryFromRequest(c)
	proposals, pagination, err := h.proposals.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposals, pagination)
}

// Get godoc
// @Summary Get proposal detail
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /proposals/{id} [get]
func (h *ProposalHandler) Get(c *gin.Context) {
	proposal, err := h.proposals.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// Update godoc
// @Summary Update proposal content
// @Description Edits are only allowed while the proposal is unread
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.UpdateProposalRequest true "Proposal payload"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /proposals/{id} [put]
func (h *ProposalHandler) Update(c *gin.Context) {
	var req dto.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}

	proposal, err := h.proposals.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// Delete godoc
// @Summary Delete proposal
// @Description Deletion is only allowed while the proposal is unread
// @Tags Proposals
// @Param id path string true "Proposal ID"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 403 {object} response.Envelope
// @Router /proposals/{id} [delete]
func (h *ProposalHandler) Delete(c *gin.Context) {
	if err := h.proposals.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ChangeStatus godoc
// @Summary Change proposal status
// @Description Appends a new entry to the status ledger
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.ChangeStatusRequest true "Target status"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /proposals/{id}/status [patch]
func (h *ProposalHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	proposal, err := h.proposals.ChangeStatus(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// History godoc
// @Summary Proposal status history
// @Description Full status ledger, newest first
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /proposals/{id}/history [get]
func (h *ProposalHandler) History(c *gin.Context) {
	events, err := h.proposals.History(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Draft godoc
// @Summary Generate AI proposal draft
// @Description Drafts content from the recipient owner profile; nothing is persisted
// @Tags Proposals
// @Accept json
// @Produce json
// @Param payload body dto.DraftRequest true "Draft parameters"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /proposals/draft [post]
func (h *ProposalHandler) Draft(c *gin.Context) {
	if h.drafts == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "draft generation is disabled"))
		return
	}

	var req dto.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}

	draft, err := h.drafts.Generate(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// ExportPDF godoc
// @Summary Export proposal as PDF
// @Tags Proposals
// @Produce application/pdf
// @Param id path string true "Proposal ID"
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /proposals/{id}/export [get]
func (h *ProposalHandler) ExportPDF(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "exports are disabled"))
		return
	}

	payload, filename, err := h.exports.ExportProposalPDF(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// ExportCSV godoc
// @Summary Export proposal listing as CSV
// @Tags Proposals
// @Produce text/csv
// @Param box query string false "Mailbox: all, inbox or sent"
// @Param status query string false "Filter by current status"
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /proposals/export [get]
func (h *ProposalHandler) ExportCSV(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "exports are disabled"))
		return
	}

	payload, filename, err := h.exports.ExportProposalsCSV(c.Request.Context(), claimsFromContext(c), queryFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

func queryFromRequest(c *gin.Context) dto.ProposalQuery {
	query := dto.ProposalQuery{
		Box:       models.ProposalBox(c.DefaultQuery("box", string(models.BoxAll))),
		Status:    models.ProposalStatus(strings.ToUpper(c.Query("status"))),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = size
	}
	return query
}
