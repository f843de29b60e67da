package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is owned by the auth service. The password hash lives on the
// credential Account and is never part of User.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          *string   `json:"name"`
	Image         *string   `json:"image"`
	EmailVerified bool      `json:"emailVerified"`
	Role          string    `json:"role"`
	Banned        bool      `json:"banned"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DisplayName returns the name, or fallback when unset.
func (u *User) DisplayName(fallback string) string {
	if u == nil || u.Name == nil || strings.TrimSpace(*u.Name) == "" {
		return fallback
	}
	return *u.Name
}

// Profile is the public projection returned by the lookup API.
type Profile struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

const userColumns = `id, email, name, image, email_verified, role, banned, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.EmailVerified, &u.Role, &u.Banned, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	query := `INSERT INTO users (id, email, name, image, email_verified, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query, u.ID, u.Email, u.Name, u.Image, u.EmailVerified, u.Role))
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", mapErr(err))
	}
	return saved, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, fmt.Errorf("get user by id: %w", mapErr(err))
	}
	return u, nil
}

// GetUserByEmail matches email case-insensitively.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", mapErr(err))
	}
	return u, nil
}

// GetProfileByEmail projects {id, email, name} of the user with exactly this email.
func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, `SELECT id, email, name FROM users WHERE email = $1`, email).
		Scan(&p.ID, &p.Email, &p.Name)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile by email: %w", mapErr(err))
	}
	return p, nil
}

func (r *Repository) MarkEmailVerified(ctx context.Context, email string) (User, error) {
	query := `UPDATE users SET email_verified = TRUE, updated_at = now()
			  WHERE lower(email) = lower($1)
			  RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return User{}, fmt.Errorf("mark email verified: %w", mapErr(err))
	}
	return u, nil
}

// UpdateUserImage sets the avatar URL. A nil image clears it.
func (r *Repository) UpdateUserImage(ctx context.Context, id string, image *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET image = $2, updated_at = now() WHERE id = $1`, id, image)
	if err != nil {
		return fmt.Errorf("update user image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user image: %w", ErrNotFound)
	}
	return nil
}

// ListUsers returns a page of users ordered by creation time, plus the total count.
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}
