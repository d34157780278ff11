package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ticketdesk/backend/internal/application/services"
	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/fieldtypes"
	"github.com/ticketdesk/backend/pkg/models"
)

type FieldDefHandler struct {
	svcMgr *services.ServiceManager
}

func NewFieldDefHandler(svcMgr *services.ServiceManager) *FieldDefHandler {
	return &FieldDefHandler{
		svcMgr: svcMgr,
	}
}

// GetFieldTypes handles GET /api/metadata/fieldtypes
func (h *FieldDefHandler) GetFieldTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"field_types": fieldtypes.GetAllFieldTypes(),
	})
}

// ListFields handles GET /api/metadata/custom-fields
func (h *FieldDefHandler) ListFields(c *gin.Context) {
	scope := models.FieldScope{}
	if v := c.Query("category"); v != "" {
		scope.Category = &v
	}
	if v := c.Query("branch_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			scope.BranchID = &id
		}
	}
	if v := c.Query("department_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			scope.DepartmentID = &id
		}
	}

	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		b := v == "true" || v == "1"
		isActive = &b
	}

	page, pageSize := Pagination(c)
	HandleGetEnvelope(c, "custom_fields", func() (interface{}, error) {
		return h.svcMgr.FieldDefs.List(c.Request.Context(), scope, isActive, page, pageSize)
	})
}

// GetField handles GET /api/metadata/custom-fields/:id
func (h *FieldDefHandler) GetField(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	HandleGetEnvelope(c, "custom_field", func() (interface{}, error) {
		return h.svcMgr.FieldDefs.Get(c.Request.Context(), id)
	})
}

// CreateField handles POST /api/metadata/custom-fields
func (h *FieldDefHandler) CreateField(c *gin.Context) {
	var def models.FieldDefinition
	if !BindJSON(c, &def) {
		return
	}

	if err := h.svcMgr.FieldDefs.Create(c.Request.Context(), &def); err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		constants.FieldMessage: "Custom field created successfully",
		"custom_field":         def,
	})
}

// UpdateField handles PATCH /api/metadata/custom-fields/:id
func (h *FieldDefHandler) UpdateField(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var updates models.FieldDefinitionUpdate
	if !BindJSON(c, &updates) {
		return
	}

	updated, err := h.svcMgr.FieldDefs.Update(c.Request.Context(), id, &updates)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		constants.FieldMessage: "Custom field updated successfully",
		"custom_field":         updated,
	})
}

// DeleteField handles DELETE /api/metadata/custom-fields/:id
func (h *FieldDefHandler) DeleteField(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	HandleDeleteEnvelope(c, "Custom field deactivated", func() error {
		return h.svcMgr.FieldDefs.Deactivate(c.Request.Context(), id)
	})
}
