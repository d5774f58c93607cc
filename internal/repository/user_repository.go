package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/postboard/internal/model"
)

// UserRepo serves the admin user endpoints.  Users and addresses are created
// outside the application (see cmd/seed); this repository only reads,
// rewrites and removes them.
type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// List returns every user left-joined with its address.  The password column
// is not selected.
func (r *UserRepo) List(ctx context.Context) ([]model.UserListItem, error) {
	const q = `SELECT app_user.id, app_user.role, app_user.first_name, app_user.last_name,
	                  app_user.email_address, app_user.date_of_birth, app_user.address
	           FROM app_user
	           LEFT JOIN address ON app_user.address = address.id`
	users := []model.UserListItem{}
	if err := r.DB.SelectContext(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetByID fetches the profile projection of one user.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.UserProfile, error) {
	const q = `SELECT id, role, first_name, last_name, email_address, date_of_birth
	           FROM app_user WHERE id = ? LIMIT 1`
	var u model.UserProfile
	if err := r.DB.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, ErrUserNotFound
		}
		return u, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// addressRow keeps the nullable address columns of the left join apart from
// the public projection.
type addressRow struct {
	UID          string         `db:"uid"`
	Country      sql.NullString `db:"country"`
	City         sql.NullString `db:"city"`
	Street       sql.NullString `db:"street"`
	StreetNumber sql.NullString `db:"street_number"`
	PostalCode   sql.NullString `db:"postal_code"`
	AddressID    sql.NullString `db:"address_id"`
}

// GetAddress returns the address of a user as a slice holding zero or one
// element.  A user without an address yields an empty slice; an unknown user
// yields ErrUserNotFound.
func (r *UserRepo) GetAddress(ctx context.Context, id string) ([]model.UserAddress, error) {
	const q = `SELECT app_user.id AS uid, address.id AS address_id, address.country, address.city,
	                  address.street, address.street_number, address.postal_code
	           FROM app_user
	           LEFT JOIN address ON app_user.address = address.id
	           WHERE app_user.id = ? LIMIT 1`
	var row addressRow
	if err := r.DB.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get address of user %s: %w", id, err)
	}
	out := []model.UserAddress{}
	if !row.AddressID.Valid {
		return out, nil
	}
	return append(out, model.UserAddress{
		UID:          row.UID,
		Country:      row.Country.String,
		City:         row.City.String,
		Street:       row.Street.String,
		StreetNumber: row.StreetNumber.String,
		PostalCode:   row.PostalCode.String,
	}), nil
}

// Modify rewrites the editable columns of a user unconditionally.  The DSN
// sets clientFoundRows so an update that changes nothing still counts the
// matched row; zero means the id is unknown.
func (r *UserRepo) Modify(ctx context.Context, id string, p model.UserPatch) error {
	const q = `UPDATE app_user
	           SET role = ?, first_name = ?, last_name = ?, email_address = ?, date_of_birth = ?
	           WHERE app_user.id = ?`
	res, err := r.DB.ExecContext(ctx, q, p.Role, p.FirstName, p.LastName, p.EmailAddress, p.DateOfBirth, id)
	if err != nil {
		return fmt.Errorf("modify user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user by id.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM app_user WHERE app_user.id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
