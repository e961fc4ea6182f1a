package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNotFound is returned when no user matches the identifier.
	ErrNotFound = errors.New("user not found")
	// ErrAmbiguous is returned when the identifier is the user name of one user and the email of another.
	ErrAmbiguous = errors.New("identifier matches more than one user")
)

// Repository encapsulates all operations available on the database.
type Repository interface {
	// FindUserByIdentifier returns the user whose user name or email equals the identifier, with its preferences.
	// It fails with ErrAmbiguous instead of picking one of two matching users.
	FindUserByIdentifier(ctx context.Context, identifier string) (*User, error)
	// UpdateUser persists the account fields of the user.
	UpdateUser(ctx context.Context, user *User) error
	// SetPreference creates or overwrites a preference of the user.
	SetPreference(ctx context.Context, userID int64, key, value string) error
	// AddAuthLog appends a line to the authentication audit log.
	AddAuthLog(ctx context.Context, entry AuthLogEntry) error
}

// repository implements Repository.
type repository struct {
	database *sql.DB
}

// NewRepository returns a new implementation of Repository.
func NewRepository(database *sql.DB) Repository {
	return &repository{database: database}
}

func (r *repository) FindUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	user, err := r.findUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	// Load preferences.
	query, args := listPreferencesQuery(user.ID)
	rows, err := r.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error in query execution: %w", err)
	}
	// Close rows upon return.
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("error in rows.Scan call: %w", err)
		}
		user.Preferences[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error in rows iteration: %w", err)
	}

	return user, nil
}

// findUser returns the only user matching the identifier, without preferences.
func (r *repository) findUser(ctx context.Context, identifier string) (*User, error) {
	query, args := findUserQuery(identifier)
	rows, err := r.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error in query execution: %w", err)
	}
	// Close rows upon return.
	defer func() { _ = rows.Close() }()

	var matches []*User
	for rows.Next() {
		user := NewUser(0, "", "", "")
		if err := rows.Scan(&user.ID, &user.userName, &user.realName, &user.email); err != nil {
			return nil, fmt.Errorf("error in rows.Scan call: %w", err)
		}
		matches = append(matches, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error in rows iteration: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		slog.WarnContext(ctx, "identifier matches more than one user", "ids", []int64{matches[0].ID, matches[1].ID})
		return nil, ErrAmbiguous
	}
}

func (r *repository) UpdateUser(ctx context.Context, user *User) error {
	query, args := updateUserQuery(user)
	result, err := r.database.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error in query execution: %w", err)
	}

	af, _ := result.RowsAffected()
	if af == 0 {
		return ErrNotFound
	}

	user.changed = false
	slog.InfoContext(ctx, "user updated successfully", "id", user.ID)
	return nil
}

func (r *repository) SetPreference(ctx context.Context, userID int64, key, value string) error {
	query, args := setPreferenceQuery(userID, key, value)
	if _, err := r.database.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error in query execution: %w", err)
	}
	return nil
}

func (r *repository) AddAuthLog(ctx context.Context, entry AuthLogEntry) error {
	query, args := addAuthLogQuery(entry)
	if _, err := r.database.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error in query execution: %w", err)
	}
	return nil
}
