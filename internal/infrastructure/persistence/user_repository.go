package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
)

// UserRepository backs authentication only; user administration is a
// separate service.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns one active user or nil when absent
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.SystemUser, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = ? AND %s = TRUE`,
		constants.FieldID, constants.FieldName, constants.FieldEmail,
		constants.FieldPasswordHash, constants.FieldIsAdmin, constants.FieldIsActive,
		constants.TableUser, constants.FieldEmail, constants.FieldIsActive,
	)

	var u models.SystemUser
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns one user or nil when absent
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.SystemUser, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = ?`,
		constants.FieldID, constants.FieldName, constants.FieldEmail,
		constants.FieldPasswordHash, constants.FieldIsAdmin, constants.FieldIsActive,
		constants.TableUser, constants.FieldID,
	)

	var u models.SystemUser
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
