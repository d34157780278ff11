package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ticketdesk/backend/internal/application/services"
	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/rules"
)

type RuleHandler struct {
	svcMgr *services.ServiceManager
}

func NewRuleHandler(svcMgr *services.ServiceManager) *RuleHandler {
	return &RuleHandler{
		svcMgr: svcMgr,
	}
}

// ListRules handles GET /api/rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	var ruleType *constants.RuleType
	if v := c.Query("rule_type"); v != "" {
		rt := constants.RuleType(v)
		ruleType = &rt
	}
	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		b := v == "true" || v == "1"
		isActive = &b
	}

	page, pageSize := Pagination(c)
	HandleGetEnvelope(c, "rules", func() (interface{}, error) {
		return h.svcMgr.Rules.List(c.Request.Context(), ruleType, isActive, page, pageSize)
	})
}

// GetRule handles GET /api/rules/:id
func (h *RuleHandler) GetRule(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	HandleGetEnvelope(c, "rule", func() (interface{}, error) {
		return h.svcMgr.Rules.Get(c.Request.Context(), id)
	})
}

// CreateRule handles POST /api/rules
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var rule rules.Rule
	if !BindJSON(c, &rule) {
		return
	}

	if err := h.svcMgr.Rules.Create(c.Request.Context(), &rule); err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		constants.FieldMessage: "Automation rule created successfully",
		"rule":                 rule,
	})
}

// UpdateRule handles PUT /api/rules/:id
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var rule rules.Rule
	if !BindJSON(c, &rule) {
		return
	}

	updated, err := h.svcMgr.Rules.Update(c.Request.Context(), id, &rule)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		constants.FieldMessage: "Automation rule updated successfully",
		"rule":                 updated,
	})
}

// SetActiveRequest is the activation toggle payload
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetRuleActive handles PATCH /api/rules/:id/active
func (h *RuleHandler) SetRuleActive(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.svcMgr.Rules.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Automation rule updated successfully"})
}

// DeleteRule handles DELETE /api/rules/:id
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	HandleDeleteEnvelope(c, "Automation rule deleted", func() error {
		return h.svcMgr.Rules.Delete(c.Request.Context(), id)
	})
}
