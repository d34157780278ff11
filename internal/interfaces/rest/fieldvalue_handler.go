package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ticketdesk/backend/internal/application/services"
	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
	"github.com/ticketdesk/backend/pkg/render"
)

type FieldValueHandler struct {
	svcMgr *services.ServiceManager
}

func NewFieldValueHandler(svcMgr *services.ServiceManager) *FieldValueHandler {
	return &FieldValueHandler{
		svcMgr: svcMgr,
	}
}

// GetTicketFields handles GET /api/tickets/:id/custom-fields
func (h *FieldValueHandler) GetTicketFields(c *gin.Context) {
	ticketID, ok := PathID(c)
	if !ok {
		return
	}
	HandleGetEnvelope(c, "custom_fields", func() (interface{}, error) {
		scope, err := h.ticketScope(c, ticketID)
		if err != nil {
			return nil, err
		}
		return h.svcMgr.FieldSets.Load(c.Request.Context(), scope, ticketID)
	})
}

// GetRenderedFields handles GET /api/tickets/:id/custom-fields/rendered
func (h *FieldValueHandler) GetRenderedFields(c *gin.Context) {
	ticketID, ok := PathID(c)
	if !ok {
		return
	}

	mode := render.ModeEdit
	if c.Query("mode") == "read" {
		mode = render.ModeReadOnly
	}

	user := GetUserFromContext(c)
	adminView := user != nil && user.IsAdmin

	HandleGetEnvelope(c, "fields", func() (interface{}, error) {
		scope, err := h.ticketScope(c, ticketID)
		if err != nil {
			return nil, err
		}
		return h.svcMgr.FieldSets.RenderForm(c.Request.Context(), scope, ticketID, mode, adminView)
	})
}

// SaveValuesRequest is the batch value submission payload
type SaveValuesRequest struct {
	Values []models.FieldValueInput `json:"values" binding:"required"`
}

// SaveTicketValues handles POST /api/tickets/:id/custom-values
func (h *FieldValueHandler) SaveTicketValues(c *gin.Context) {
	ticketID, ok := PathID(c)
	if !ok {
		return
	}

	var req SaveValuesRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.svcMgr.FieldSets.SaveValues(c.Request.Context(), ticketID, req.Values, false); err != nil {
		RespondAppError(c, err)
		return
	}

	// Intake assignment piggybacks on value submission for new tickets
	if c.Query("run_assignment") == "true" {
		if _, err := h.svcMgr.Engine.ApplyIntakeAssignment(c.Request.Context(), ticketID); err != nil {
			RespondAppError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Values saved successfully"})
}

// ticketScope derives the field scope from the ticket record so the
// applicable set matches the ticket's category, branch and department.
// For unknown tickets the scope falls back to the category query param
// so new-ticket forms can still be rendered.
func (h *FieldValueHandler) ticketScope(c *gin.Context, ticketID int64) (models.FieldScope, error) {
	scope := models.FieldScope{}
	ticket, err := h.svcMgr.Tickets.FindByID(c.Request.Context(), ticketID)
	if err != nil {
		return scope, err
	}
	if ticket == nil {
		if v := c.Query("category"); v != "" {
			scope.Category = &v
		}
		return scope, nil
	}
	if ticket.Category != "" {
		scope.Category = &ticket.Category
	}
	scope.BranchID = ticket.BranchID
	scope.DepartmentID = ticket.DepartmentID
	return scope, nil
}
