package repository

import (
	"context"
	"database/sql"
	"storefront/internal/entity"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) CreateUser(ctx context.Context, q DBTX, user *entity.User) error {
	query := `INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsStaff)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = int(id)
	return nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, username, email, first_name, last_name, password_hash, is_staff FROM users WHERE username = ?`
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash, &user.IsStaff)
	if err != nil {
		return nil, err
	}

	return user, nil
}
