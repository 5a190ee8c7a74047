package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/photoflow/internal/config"
	"github.com/your-org/photoflow/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.pool)
}

// imageCountExpr counts distinct images associated with person p.
const imageCountExpr = `(SELECT COUNT(DISTINCT image_id) FROM image_people WHERE person_id = p.id)`

// --- Persons ---

func (s *PostgresStore) CreatePerson(ctx context.Context, name string, seed []float32, seedImageID uuid.UUID, avatarURL string) (*models.Person, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	p := &models.Person{
		ID:        uuid.New(),
		Name:      name,
		AvatarURL: avatarURL,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO persons (id, name, avatar_url) VALUES ($1, $2, $3) RETURNING created_at, updated_at`,
		p.ID, p.Name, p.AvatarURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO person_descriptors (id, person_id, descriptor, source_image_id) VALUES ($1, $2, $3, $4)`,
		uuid.New(), p.ID, pgvector.NewVector(seed), seedImageID)
	if err != nil {
		return nil, fmt.Errorf("store seed descriptor: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO image_people (image_id, person_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		seedImageID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("associate seed image: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	p.ImageCount = 1
	return p, nil
}

func (s *PostgresStore) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	p := &models.Person{}
	err := s.pool.QueryRow(ctx,
		`SELECT p.id, p.name, p.avatar_url, p.created_at, p.updated_at, `+imageCountExpr+`
		 FROM persons p WHERE p.id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt, &p.ImageCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPersons(ctx context.Context) ([]models.Person, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.name, p.avatar_url, p.created_at, p.updated_at, `+imageCountExpr+`
		 FROM persons p ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt, &p.ImageCount); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (s *PostgresStore) RenamePerson(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE persons SET name = $1, updated_at = NOW() WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("rename person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddDescriptor(ctx context.Context, personID uuid.UUID, vector []float32, sourceImageID uuid.UUID) error {
	// One descriptor per (person, source image): reprocessing the same image
	// must not grow the descriptor set.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO person_descriptors (id, person_id, descriptor, source_image_id) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (person_id, source_image_id) DO NOTHING`,
		uuid.New(), personID, pgvector.NewVector(vector), sourceImageID)
	if err != nil {
		return fmt.Errorf("add descriptor: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCandidates(ctx context.Context) ([]Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, `+imageCountExpr+`, pd.descriptor
		 FROM persons p
		 JOIN person_descriptors pd ON pd.person_id = p.id
		 ORDER BY p.id, pd.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id    uuid.UUID
			count int
			vec   pgvector.Vector
		)
		if err := rows.Scan(&id, &count, &vec); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		i, ok := index[id]
		if !ok {
			i = len(candidates)
			index[id] = i
			candidates = append(candidates, Candidate{PersonID: id, ImageCount: count})
		}
		candidates[i].Descriptors = append(candidates[i].Descriptors, vec.Slice())
	}
	return candidates, rows.Err()
}

// MergePersons moves all associations, detections and descriptors of the
// absorbed persons onto the survivor, then deletes the absorbed records.
func (s *PostgresStore) MergePersons(ctx context.Context, survivorID uuid.UUID, absorbedIDs []uuid.UUID) (*models.Person, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO image_people (image_id, person_id)
		 SELECT DISTINCT image_id, $1 FROM image_people WHERE person_id = ANY($2)
		 ON CONFLICT DO NOTHING`, survivorID, absorbedIDs)
	if err != nil {
		return nil, fmt.Errorf("merge associations: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`DELETE FROM image_people WHERE person_id = ANY($1)`, absorbedIDs); err != nil {
		return nil, fmt.Errorf("clear absorbed associations: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE face_detections SET person_id = $1 WHERE person_id = ANY($2)`,
		survivorID, absorbedIDs); err != nil {
		return nil, fmt.Errorf("reassign detections: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE person_descriptors SET person_id = $1 WHERE person_id = ANY($2)`,
		survivorID, absorbedIDs); err != nil {
		return nil, fmt.Errorf("reassign descriptors: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`DELETE FROM persons WHERE id = ANY($1)`, absorbedIDs); err != nil {
		return nil, fmt.Errorf("delete absorbed persons: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	p, err := s.GetPerson(ctx, survivorID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// SearchPersons ranks persons by the best cosine score over their
// representative descriptors.
func (s *PostgresStore) SearchPersons(ctx context.Context, descriptor []float32, threshold float64, limit int) ([]PersonMatch, error) {
	if limit <= 0 {
		limit = 5
	}
	vec := pgvector.NewVector(descriptor)

	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.name, p.avatar_url, p.created_at, p.updated_at,
		        `+imageCountExpr+`,
		        MAX(1 - (pd.descriptor <=> $1)) AS score
		 FROM person_descriptors pd
		 JOIN persons p ON p.id = pd.person_id
		 GROUP BY p.id
		 HAVING MAX(1 - (pd.descriptor <=> $1)) >= $2
		 ORDER BY score DESC
		 LIMIT $3`, vec, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("search persons: %w", err)
	}
	defer rows.Close()

	var matches []PersonMatch
	for rows.Next() {
		var m PersonMatch
		if err := rows.Scan(&m.Person.ID, &m.Person.Name, &m.Person.AvatarURL,
			&m.Person.CreatedAt, &m.Person.UpdatedAt, &m.Person.ImageCount, &m.Score); err != nil {
			return nil, fmt.Errorf("scan search match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// --- Images ---

const imageColumns = `i.id, i.url, i.pathname, i.caption, i.width, i.height,
	i.file_size, i.file_type, i.taken_at, i.created_at,
	COALESCE(ARRAY(SELECT person_id FROM image_people WHERE image_id = i.id ORDER BY person_id), '{}'),
	COALESCE(ARRAY(SELECT album_id FROM album_images WHERE image_id = i.id ORDER BY album_id), '{}')`

func scanImage(row pgx.Row) (*models.Image, error) {
	img := &models.Image{}
	err := row.Scan(&img.ID, &img.URL, &img.Pathname, &img.Caption, &img.Width, &img.Height,
		&img.FileSize, &img.FileType, &img.TakenAt, &img.CreatedAt, &img.PeopleIDs, &img.AlbumIDs)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// UpsertImage creates the image record if it does not exist yet, keyed by
// pathname, so re-processing the same upload never duplicates records.
func (s *PostgresStore) UpsertImage(ctx context.Context, url, pathname string) (*models.Image, error) {
	row := s.pool.QueryRow(ctx,
		`WITH upserted AS (
			INSERT INTO images (id, url, pathname) VALUES ($1, $2, $3)
			ON CONFLICT (pathname) DO UPDATE SET url = EXCLUDED.url
			RETURNING *
		)
		SELECT `+imageColumns+` FROM upserted i`,
		uuid.New(), url, pathname)
	img, err := scanImage(row)
	if err != nil {
		return nil, fmt.Errorf("upsert image: %w", err)
	}
	return img, nil
}

func (s *PostgresStore) GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	img, err := scanImage(s.pool.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM images i WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

func (s *PostgresStore) GetImageByPathname(ctx context.Context, pathname string) (*models.Image, error) {
	img, err := scanImage(s.pool.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM images i WHERE i.pathname = $1`, pathname))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get image by pathname: %w", err)
	}
	return img, nil
}

func (s *PostgresStore) ListImages(ctx context.Context) ([]models.Image, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+imageColumns+` FROM images i ORDER BY i.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (s *PostgresStore) UpdateImageCaption(ctx context.Context, id uuid.UUID, caption string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE images SET caption = $1 WHERE id = $2`, caption, id)
	if err != nil {
		return fmt.Errorf("update caption: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateImageInfo(ctx context.Context, id uuid.UUID, width, height int, fileSize int64, fileType string, takenAt *time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE images SET width = $1, height = $2, file_size = $3, file_type = $4,
			taken_at = COALESCE($5, taken_at) WHERE id = $6`,
		width, height, fileSize, fileType, takenAt, id)
	if err != nil {
		return fmt.Errorf("update image info: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteImage removes the image; association rows and detections go with it
// via ON DELETE CASCADE, which keeps every person and album image count
// consistent.
func (s *PostgresStore) DeleteImage(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AssociatePerson(ctx context.Context, imageID, personID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO image_people (image_id, person_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		imageID, personID)
	if err != nil {
		return fmt.Errorf("associate person: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListImagePersons(ctx context.Context, imageID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT person_id FROM image_people WHERE image_id = $1 ORDER BY person_id`, imageID)
	if err != nil {
		return nil, fmt.Errorf("list image persons: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan person id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) ListPersonImages(ctx context.Context, personID uuid.UUID) ([]models.Image, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+imageColumns+`
		 FROM images i
		 JOIN image_people ip ON ip.image_id = i.id
		 WHERE ip.person_id = $1
		 ORDER BY i.created_at DESC`, personID)
	if err != nil {
		return nil, fmt.Errorf("list person images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// ReplaceDetections swaps the image's detection set atomically so a re-run
// of the pipeline never accumulates stale boxes.
func (s *PostgresStore) ReplaceDetections(ctx context.Context, imageID uuid.UUID, detections []models.FaceDetection) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM face_detections WHERE image_id = $1`, imageID); err != nil {
		return fmt.Errorf("clear detections: %w", err)
	}

	for _, d := range detections {
		id := d.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO face_detections (id, image_id, person_id, x, y, w, h, confidence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, imageID, d.PersonID, d.X, d.Y, d.Width, d.Height, d.Confidence); err != nil {
			return fmt.Errorf("insert detection: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDetections(ctx context.Context, imageID uuid.UUID) ([]models.FaceDetection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, image_id, person_id, x, y, w, h, confidence, created_at
		 FROM face_detections WHERE image_id = $1 ORDER BY created_at`, imageID)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var dets []models.FaceDetection
	for rows.Next() {
		var d models.FaceDetection
		if err := rows.Scan(&d.ID, &d.ImageID, &d.PersonID, &d.X, &d.Y,
			&d.Width, &d.Height, &d.Confidence, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		dets = append(dets, d)
	}
	return dets, rows.Err()
}

// --- Albums ---

const albumColumns = `a.id, a.name, a.description, a.kind, a.key, a.created_at,
	(SELECT COUNT(*) FROM album_images WHERE album_id = a.id),
	COALESCE((SELECT i.url FROM album_images ai JOIN images i ON i.id = ai.image_id
	          WHERE ai.album_id = a.id ORDER BY i.created_at DESC LIMIT 1), '')`

func scanAlbum(row pgx.Row) (*models.Album, error) {
	a := &models.Album{}
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Kind, &a.Key, &a.CreatedAt,
		&a.ImageCount, &a.CoverImage)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PostgresStore) CreateAlbum(ctx context.Context, name, description string) (*models.Album, error) {
	a := &models.Album{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Kind:        models.AlbumKindManual,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO albums (id, name, description, kind) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		a.ID, a.Name, a.Description, a.Kind,
	).Scan(&a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}
	return a, nil
}

// EnsureAlbum returns the auto-album identified by (kind, key), creating it
// when absent. The name is refreshed on every call so person-album names
// follow person renames.
func (s *PostgresStore) EnsureAlbum(ctx context.Context, kind models.AlbumKind, key, name string) (*models.Album, error) {
	row := s.pool.QueryRow(ctx,
		`WITH ensured AS (
			INSERT INTO albums (id, name, kind, key) VALUES ($1, $2, $3, $4)
			ON CONFLICT (kind, key) WHERE kind <> 'manual'
			DO UPDATE SET name = EXCLUDED.name
			RETURNING *
		)
		SELECT `+albumColumns+` FROM ensured a`,
		uuid.New(), name, kind, key)
	a, err := scanAlbum(row)
	if err != nil {
		return nil, fmt.Errorf("ensure album: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) GetAlbum(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	a, err := scanAlbum(s.pool.QueryRow(ctx,
		`SELECT `+albumColumns+` FROM albums a WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get album: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAlbums(ctx context.Context) ([]models.Album, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+albumColumns+` FROM albums a ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, *a)
	}
	return albums, rows.Err()
}

func (s *PostgresStore) UpdateAlbum(ctx context.Context, id uuid.UUID, name, description string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE albums SET name = $1, description = $2 WHERE id = $3`, name, description, id)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAlbum(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddImageToAlbum(ctx context.Context, albumID, imageID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO album_images (album_id, image_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		albumID, imageID)
	if err != nil {
		return fmt.Errorf("add image to album: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveImageFromAlbum(ctx context.Context, albumID, imageID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM album_images WHERE album_id = $1 AND image_id = $2`, albumID, imageID)
	if err != nil {
		return fmt.Errorf("remove image from album: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAlbumImages(ctx context.Context, albumID uuid.UUID) ([]models.Image, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+imageColumns+`
		 FROM images i
		 JOIN album_images ai ON ai.image_id = i.id
		 WHERE ai.album_id = $1
		 ORDER BY i.created_at DESC`, albumID)
	if err != nil {
		return nil, fmt.Errorf("list album images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// --- Sync jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context) (*models.SyncJob, error) {
	j := &models.SyncJob{
		ID:     uuid.New(),
		Status: models.JobStatusPending,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sync_jobs (id, status) VALUES ($1, $2) RETURNING created_at`,
		j.ID, j.Status,
	).Scan(&j.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.SyncJob, error) {
	j := &models.SyncJob{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, progress, image_count, error, started_at, finished_at, created_at
		 FROM sync_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Status, &j.Progress, &j.ImageCount, &j.Error,
		&j.StartedAt, &j.FinishedAt, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *models.SyncJob) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sync_jobs SET status = $1, progress = $2, image_count = $3, error = $4,
		        started_at = $5, finished_at = $6
		 WHERE id = $7`,
		job.Status, job.Progress, job.ImageCount, job.Error,
		job.StartedAt, job.FinishedAt, job.ID)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
