package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DescriptorDim is the fixed face descriptor dimension (ArcFace w600k_r50).
const DescriptorDim = 512

// Migrate creates the schema. Statements are idempotent so startup can run
// this unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS persons (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS person_descriptors (
			id              UUID PRIMARY KEY,
			person_id       UUID NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			descriptor      vector(%d) NOT NULL,
			source_image_id UUID,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, DescriptorDim),

		`CREATE INDEX IF NOT EXISTS idx_person_descriptors_person
			ON person_descriptors (person_id)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_person_descriptors_person_source
			ON person_descriptors (person_id, source_image_id)`,

		`CREATE TABLE IF NOT EXISTS images (
			id         UUID PRIMARY KEY,
			url        TEXT NOT NULL,
			pathname   TEXT NOT NULL UNIQUE,
			caption    TEXT NOT NULL DEFAULT '',
			width      INTEGER NOT NULL DEFAULT 0,
			height     INTEGER NOT NULL DEFAULT 0,
			file_size  BIGINT NOT NULL DEFAULT 0,
			file_type  TEXT NOT NULL DEFAULT '',
			taken_at   TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS face_detections (
			id         UUID PRIMARY KEY,
			image_id   UUID NOT NULL REFERENCES images(id) ON DELETE CASCADE,
			person_id  UUID REFERENCES persons(id) ON DELETE SET NULL,
			x          REAL NOT NULL,
			y          REAL NOT NULL,
			w          REAL NOT NULL,
			h          REAL NOT NULL,
			confidence REAL NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_face_detections_image
			ON face_detections (image_id)`,

		`CREATE TABLE IF NOT EXISTS image_people (
			image_id  UUID NOT NULL REFERENCES images(id) ON DELETE CASCADE,
			person_id UUID NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			PRIMARY KEY (image_id, person_id)
		)`,

		`CREATE TABLE IF NOT EXISTS albums (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			kind        TEXT NOT NULL DEFAULT 'manual',
			key         TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_albums_kind_key
			ON albums (kind, key) WHERE kind <> 'manual'`,

		`CREATE TABLE IF NOT EXISTS album_images (
			album_id UUID NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
			image_id UUID NOT NULL REFERENCES images(id) ON DELETE CASCADE,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (album_id, image_id)
		)`,

		`CREATE TABLE IF NOT EXISTS sync_jobs (
			id          UUID PRIMARY KEY,
			status      TEXT NOT NULL,
			progress    INTEGER NOT NULL DEFAULT 0,
			image_count INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT '',
			started_at  TIMESTAMPTZ,
			finished_at TIMESTAMPTZ,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
