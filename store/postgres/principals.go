package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	lmsAuth "github.com/MrEthical07/lmsAuth"
)

const principalColumns = `id, name, email, role, is_verified, avatar_public_id, avatar_url, courses, created_at, updated_at`

// Principals is the PostgreSQL principal repository.
type Principals struct {
	db DBTX
}

func NewPrincipals(db DBTX) *Principals {
	return &Principals{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row rowScanner, extra ...any) (lmsAuth.Principal, error) {
	var (
		p        lmsAuth.Principal
		role     string
		publicID sql.NullString
		url      sql.NullString
		courses  []byte
	)
	dest := append([]any{
		&p.ID, &p.Name, &p.Email, &role, &p.Verified, &publicID, &url, &courses, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return lmsAuth.Principal{}, err
	}
	p.Role = lmsAuth.Role(role)
	if publicID.Valid || url.Valid {
		p.Avatar = &lmsAuth.Avatar{PublicID: publicID.String, URL: url.String}
	}
	p.Courses = []lmsAuth.CourseRef{}
	if len(courses) > 0 {
		if err := json.Unmarshal(courses, &p.Courses); err != nil {
			return lmsAuth.Principal{}, fmt.Errorf("decode courses: %w", err)
		}
	}
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *Principals) Create(ctx context.Context, np lmsAuth.NewPrincipal) (lmsAuth.Principal, error) {
	query :=
		`INSERT INTO principals (name, email, password_hash, role, is_verified, avatar_public_id, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + principalColumns

	role := np.Role
	if role == "" {
		role = lmsAuth.RoleUser
	}
	var publicID, url string
	if np.Avatar != nil {
		publicID, url = np.Avatar.PublicID, np.Avatar.URL
	}

	row := r.db.QueryRowContext(ctx, query,
		np.Name, np.Email, nullString(np.PasswordHash), string(role), np.Verified, nullString(publicID), nullString(url))
	p, err := scanPrincipal(row)
	if err != nil {
		return lmsAuth.Principal{}, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return p, nil
}

func (r *Principals) FindByID(ctx context.Context, id string) (lmsAuth.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE id = $1`

	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return lmsAuth.Principal{}, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return p, nil
}

func (r *Principals) FindByEmail(ctx context.Context, email string) (lmsAuth.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE email = $1`

	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return lmsAuth.Principal{}, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return p, nil
}

func (r *Principals) CredentialsByEmail(ctx context.Context, email string) (lmsAuth.Credentials, error) {
	query := `SELECT ` + principalColumns + `, password_hash FROM principals WHERE email = $1`
	return r.credentials(ctx, query, email)
}

func (r *Principals) CredentialsByID(ctx context.Context, id string) (lmsAuth.Credentials, error) {
	query := `SELECT ` + principalColumns + `, password_hash FROM principals WHERE id = $1`
	return r.credentials(ctx, query, id)
}

func (r *Principals) credentials(ctx context.Context, query, arg string) (lmsAuth.Credentials, error) {
	var hash sql.NullString
	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query, arg), &hash)
	if err != nil {
		return lmsAuth.Credentials{}, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return lmsAuth.Credentials{Principal: p, PasswordHash: hash.String}, nil
}

// UpdateProfile sets name and email; empty values keep the current column.
func (r *Principals) UpdateProfile(ctx context.Context, id string, upd lmsAuth.ProfileUpdate) (lmsAuth.Principal, error) {
	query :=
		`UPDATE principals
		 SET name = COALESCE(NULLIF($2, ''), name), email = COALESCE(NULLIF($3, ''), email), updated_at = now()
		 WHERE id = $1
		 RETURNING ` + principalColumns

	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query, id, upd.Name, upd.Email))
	if err != nil {
		return lmsAuth.Principal{}, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return p, nil
}

func (r *Principals) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	query := `UPDATE principals SET password_hash = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, hash)
}

func (r *Principals) UpdateAvatar(ctx context.Context, id string, avatar lmsAuth.Avatar) (lmsAuth.Principal, error) {
	query :=
		`UPDATE principals
		 SET avatar_public_id = $2, avatar_url = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + principalColumns

	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query, id, avatar.PublicID, avatar.URL))
	if err != nil {
		return lmsAuth.Principal{}, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return p, nil
}

func (r *Principals) UpdateRole(ctx context.Context, id string, role lmsAuth.Role) (lmsAuth.Principal, error) {
	query :=
		`UPDATE principals
		 SET role = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + principalColumns

	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query, id, string(role)))
	if err != nil {
		return lmsAuth.Principal{}, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return p, nil
}

func (r *Principals) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM principals WHERE id = $1`, id)
}

// List returns all principals, newest first.
func (r *Principals) List(ctx context.Context) ([]lmsAuth.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	defer rows.Close()

	out := []lmsAuth.Principal{}
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, mapError(err, lmsAuth.ErrPrincipalNotFound)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	return out, nil
}

func (r *Principals) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, lmsAuth.ErrPrincipalNotFound)
	}
	if n == 0 {
		return lmsAuth.ErrPrincipalNotFound
	}
	return nil
}

var _ lmsAuth.PrincipalStore = (*Principals)(nil)
