package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
)

// TicketRepository exposes the minimal ticket operations the rule engine
// needs. Full ticket management lives in another service.
type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

var ticketColumns = fmt.Sprintf(
	"%s, subject, priority, category, %s, %s, %s, %s, %s, %s, %s",
	constants.FieldID, constants.FieldStatus, constants.FieldBranchID,
	constants.FieldDepartmentID, constants.FieldAssignedUserID,
	constants.FieldResolvedDate, constants.FieldCreatedDate, constants.FieldLastModifiedDate,
)

// FindByID returns one ticket or nil when absent
func (r *TicketRepository) FindByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		ticketColumns, constants.TableTicket, constants.FieldID)

	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// FindOpenForSweep returns every ticket the auto-close sweep may touch
func (r *TicketRepository) FindOpenForSweep(ctx context.Context) ([]*models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s != ? ORDER BY %s",
		ticketColumns, constants.TableTicket, constants.FieldStatus, constants.FieldID)

	rows, err := r.db.QueryContext(ctx, query, string(constants.TicketStatusClosed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []*models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Close marks a ticket closed
func (r *TicketRepository) Close(ctx context.Context, id int64) error {
	now := time.Now()
	query := fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?",
		constants.TableTicket, constants.FieldStatus, constants.FieldClosedDate,
		constants.FieldLastModifiedDate, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, string(constants.TicketStatusClosed), now, now, id)
	return err
}

// Assign sets the assignment target of a ticket. Rules resolve to a
// user or a department; only the provided target columns are written so
// an assignment never wipes the ticket's existing routing.
func (r *TicketRepository) Assign(ctx context.Context, id int64, userID, departmentID *int64) error {
	sets := ""
	args := []interface{}{}
	if userID != nil {
		sets += fmt.Sprintf("%s = ?, ", constants.FieldAssignedUserID)
		args = append(args, *userID)
	}
	if departmentID != nil {
		sets += fmt.Sprintf("%s = ?, ", constants.FieldDepartmentID)
		args = append(args, *departmentID)
	}

	query := fmt.Sprintf("UPDATE %s SET %s%s = ? WHERE %s = ?",
		constants.TableTicket, sets, constants.FieldLastModifiedDate, constants.FieldID)
	args = append(args, time.Now(), id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	var t models.Ticket
	var status string

	err := row.Scan(
		&t.ID, &t.Subject, &t.Priority, &t.Category, &status,
		&t.BranchID, &t.DepartmentID, &t.AssignedUserID, &t.ResolvedDate,
		&t.CreatedDate, &t.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	t.Status = constants.TicketStatus(status)
	return &t, nil
}
