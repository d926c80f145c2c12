package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campustrack/campustrack-backend/internal/model"
)

// ProfessorRepository handles professor account data access.
type ProfessorRepository struct {
	pool *pgxpool.Pool
}

// NewProfessorRepository creates a new ProfessorRepository.
func NewProfessorRepository(pool *pgxpool.Pool) *ProfessorRepository {
	return &ProfessorRepository{pool: pool}
}

// GetByUID retrieves a professor by uid.
func (r *ProfessorRepository) GetByUID(ctx context.Context, uid string) (*model.Professor, error) {
	p := &model.Professor{}
	err := r.pool.QueryRow(ctx,
		`SELECT uid, name, email, email_verified, password_hash, created_at
		 FROM professors WHERE uid = $1`, uid,
	).Scan(&p.UID, &p.Name, &p.Email, &p.EmailVerified, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByEmail retrieves a professor by email for login.
func (r *ProfessorRepository) GetByEmail(ctx context.Context, email string) (*model.Professor, error) {
	p := &model.Professor{}
	err := r.pool.QueryRow(ctx,
		`SELECT uid, name, email, email_verified, password_hash, created_at
		 FROM professors WHERE email = $1`, email,
	).Scan(&p.UID, &p.Name, &p.Email, &p.EmailVerified, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new professor account.
func (r *ProfessorRepository) Create(ctx context.Context, p *model.Professor) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO professors (uid, name, email, email_verified, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		p.UID, p.Name, p.Email, p.EmailVerified, p.PasswordHash,
	).Scan(&p.CreatedAt)
}
