package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
)

// FieldValueRepository persists per-ticket encoded field values. One row
// per (ticket, field) pair, enforced by a unique key; a batch save
// upserts exactly the submitted pairs and leaves everything else alone.
type FieldValueRepository struct {
	db *sql.DB
}

func NewFieldValueRepository(db *sql.DB) *FieldValueRepository {
	return &FieldValueRepository{db: db}
}

// FindByTicket returns the stored values for one ticket, keyed by field ID
func (r *FieldValueRepository) FindByTicket(ctx context.Context, ticketID int64) (map[int64]*models.FieldValue, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = ?`,
		constants.FieldID, constants.FieldCustomFieldID, constants.FieldTicketID,
		constants.FieldValue, constants.FieldCreatedDate, constants.FieldLastModifiedDate,
		constants.TableCustomFieldValue, constants.FieldTicketID,
	)

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := map[int64]*models.FieldValue{}
	for rows.Next() {
		var fv models.FieldValue
		if err := rows.Scan(&fv.ID, &fv.CustomFieldID, &fv.TicketID, &fv.Value,
			&fv.CreatedDate, &fv.LastModifiedDate); err != nil {
			return nil, err
		}
		values[fv.CustomFieldID] = &fv
	}
	return values, rows.Err()
}

// UpsertBatch overwrites the value rows for exactly the given pairs.
// Omitted field IDs are left untouched.
func (r *FieldValueRepository) UpsertBatch(ctx context.Context, ticketID int64, pairs []models.FieldValueInput) error {
	if len(pairs) == 0 {
		return nil
	}

	now := time.Now()
	placeholders := make([]string, 0, len(pairs))
	args := make([]interface{}, 0, len(pairs)*5)
	for _, p := range pairs {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?)")
		args = append(args, p.CustomFieldID, ticketID, p.Value, now, now)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES %s
		ON DUPLICATE KEY UPDATE %s = VALUES(%s), %s = VALUES(%s)`,
		constants.TableCustomFieldValue,
		constants.FieldCustomFieldID, constants.FieldTicketID, constants.FieldValue,
		constants.FieldCreatedDate, constants.FieldLastModifiedDate,
		strings.Join(placeholders, ", "),
		constants.FieldValue, constants.FieldValue,
		constants.FieldLastModifiedDate, constants.FieldLastModifiedDate,
	)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
