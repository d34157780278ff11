package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/ticketdesk/backend/pkg/errors"
	"github.com/ticketdesk/backend/pkg/models"
	"github.com/ticketdesk/backend/pkg/render"
)

// FieldValueStore is the value persistence surface
type FieldValueStore interface {
	FindByTicket(ctx context.Context, ticketID int64) (map[int64]*models.FieldValue, error)
	UpsertBatch(ctx context.Context, ticketID int64, values []models.FieldValueInput) error
}

// FieldSetService assembles the applicable field set for a ticket:
// scope resolution, value hydration, rendering and batch save.
type FieldSetService struct {
	defs   FieldDefStore
	values FieldValueStore
}

func NewFieldSetService(defs FieldDefStore, values FieldValueStore) *FieldSetService {
	return &FieldSetService{defs: defs, values: values}
}

// Load returns the active definitions applicable to the scope, each
// hydrated with the ticket's stored value or the definition default.
// Pass ticketID 0 to skip hydration (new-ticket forms).
func (s *FieldSetService) Load(ctx context.Context, scope models.FieldScope, ticketID int64) ([]*models.FieldDefinition, error) {
	active := true
	defs, err := s.defs.FindApplicable(ctx, scope, &active, 0, 0)
	if err != nil {
		return nil, errors.NewInternalError("failed to load applicable fields", err)
	}

	// Query already orders, re-sort defensively so callers can rely
	// on display_order regardless of store implementation
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].DisplayOrder != defs[j].DisplayOrder {
			return defs[i].DisplayOrder < defs[j].DisplayOrder
		}
		return defs[i].ID < defs[j].ID
	})

	if ticketID == 0 {
		for _, def := range defs {
			def.Value = def.DefaultValue
		}
		return defs, nil
	}

	stored, err := s.values.FindByTicket(ctx, ticketID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load field values", err)
	}
	for _, def := range defs {
		if fv, ok := stored[def.ID]; ok {
			def.Value = fv.Value
			def.ValueID = &fv.ID
		} else {
			def.Value = def.DefaultValue
		}
	}
	return defs, nil
}

// RenderForm builds the presentation models for a ticket's field set.
// Fields not visible to the requesting user are omitted entirely.
func (s *FieldSetService) RenderForm(ctx context.Context, scope models.FieldScope, ticketID int64, mode render.Mode, adminView bool) ([]*render.Presentation, error) {
	defs, err := s.Load(ctx, scope, ticketID)
	if err != nil {
		return nil, err
	}
	if adminView {
		// Admins see every field; lift the visibility gate without
		// mutating the editability flag
		for _, def := range defs {
			def.IsVisibleToUser = true
		}
	}
	return render.RenderAll(defs, mode), nil
}

// SaveValues persists a batch of submitted values for a ticket. Values
// cleared to empty are omitted from the write, matching the permissive
// submission contract: absence is not deletion.
func (s *FieldSetService) SaveValues(ctx context.Context, ticketID int64, inputs []models.FieldValueInput, enforceRequired bool) error {
	active := true
	defs, err := s.defs.FindApplicable(ctx, models.FieldScope{}, &active, 0, 0)
	if err != nil {
		return errors.NewInternalError("failed to load field definitions", err)
	}
	byID := make(map[int64]*models.FieldDefinition, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}

	var writes []models.FieldValueInput
	submitted := make(map[int64]bool)
	for _, in := range inputs {
		def, ok := byID[in.CustomFieldID]
		if !ok {
			log.Printf("⚠️ Dropping value for unknown or inactive field %d on ticket %d", in.CustomFieldID, ticketID)
			continue
		}
		submitted[def.ID] = true
		if in.Value == nil || *in.Value == "" {
			continue
		}
		writes = append(writes, in)
	}

	if enforceRequired {
		for _, def := range defs {
			if def.IsRequired && submitted[def.ID] {
				present := false
				for _, w := range writes {
					if w.CustomFieldID == def.ID {
						present = true
						break
					}
				}
				if !present {
					return errors.NewValidationError(def.Name, fmt.Sprintf("field '%s' is required", def.Label))
				}
			}
		}
	}

	if len(writes) == 0 {
		return nil
	}
	return s.values.UpsertBatch(ctx, ticketID, writes)
}
