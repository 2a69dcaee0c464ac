package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/rollmark/rollmark/internal/database"
)

// IdentityRepository provides PostgreSQL-backed identity storage.
// Embeddings live in a pgvector column so the gallery scan round-trips
// the exact components that were enrolled.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Get retrieves an identity by student ID, returns nil if not found.
func (r *IdentityRepository) Get(ctx context.Context, studentID string) (*database.Identity, error) {
	query := `
		SELECT student_id, given_name, family_name, embedding, photo_refs, created_at, updated_at
		FROM students
		WHERE student_id = $1
	`

	var identity database.Identity
	var embedding sql.NullString

	err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&identity.StudentID,
		&identity.GivenName,
		&identity.FamilyName,
		&embedding,
		pq.Array(&identity.PhotoRefs),
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	if embedding.Valid {
		var vec pgvector.Vector
		if err := vec.Scan(embedding.String); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		identity.Embedding = vec.Slice()
	}
	return &identity, nil
}

// AllEnrolled returns every identity with an embedding in stable
// enrollment order. Each call is a fresh scan.
func (r *IdentityRepository) AllEnrolled(ctx context.Context) ([]database.Identity, error) {
	query := `
		SELECT student_id, given_name, family_name, embedding, photo_refs, created_at, updated_at
		FROM students
		WHERE embedding IS NOT NULL
		ORDER BY created_at, student_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query enrolled identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		var identity database.Identity
		var vec pgvector.Vector
		if err := rows.Scan(
			&identity.StudentID,
			&identity.GivenName,
			&identity.FamilyName,
			&vec,
			pq.Array(&identity.PhotoRefs),
			&identity.CreatedAt,
			&identity.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.Embedding = vec.Slice()
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// Count returns the total number of identities stored.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// Upsert creates the identity or overwrites its names and embedding in a
// single statement, which keeps concurrent upserts of the same student
// last-writer-wins without partial updates. A non-empty photo ref is
// appended to the existing photo list.
func (r *IdentityRepository) Upsert(ctx context.Context, identity database.Identity) (bool, error) {
	if len(identity.Embedding) != 0 && len(identity.Embedding) != database.EmbeddingDim {
		return false, database.ErrInvalidEmbedding
	}

	var embedding any
	if len(identity.Embedding) != 0 {
		embedding = pgvector.NewVector(identity.Embedding)
	}

	var photoRef string
	if len(identity.PhotoRefs) != 0 {
		photoRef = identity.PhotoRefs[len(identity.PhotoRefs)-1]
	}

	query := `
		INSERT INTO students (student_id, given_name, family_name, embedding, photo_refs)
		VALUES ($1, $2, $3, $4, CASE WHEN $5 = '' THEN '{}'::TEXT[] ELSE ARRAY[$5] END)
		ON CONFLICT (student_id) DO UPDATE SET
			given_name = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			embedding = EXCLUDED.embedding,
			photo_refs = CASE WHEN $5 = '' THEN students.photo_refs
			                  ELSE array_append(students.photo_refs, $5) END,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`

	var created bool
	err := r.pool.QueryRow(ctx, query,
		identity.StudentID, identity.GivenName, identity.FamilyName, embedding, photoRef,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert identity: %w", err)
	}
	return created, nil
}

// UpsertName creates or updates an identity's names without touching its
// embedding or photo refs.
func (r *IdentityRepository) UpsertName(ctx context.Context, studentID, givenName, familyName string) error {
	query := `
		INSERT INTO students (student_id, given_name, family_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE SET
			given_name = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, studentID, givenName, familyName); err != nil {
		return fmt.Errorf("upsert identity name: %w", err)
	}
	return nil
}
