package clips

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateClip(ctx context.Context, clip *Clip) error
	GetClip(ctx context.Context, id string) (*Clip, error)
	ListClips(ctx context.Context) ([]*Clip, error)
	DeleteClip(ctx context.Context, id string) error
	CountClips(ctx context.Context) (int, error)

	GetState(ctx context.Context, clipID string) (*ClipState, error)
	UpsertState(ctx context.Context, state *ClipState) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateClip(ctx context.Context, c *Clip) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clips (id, name, media_path, duration_s, frame_rate, width, height, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.MediaPath, c.DurationS, c.FrameRate, c.Width, c.Height,
		c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetClip(ctx context.Context, id string) (*Clip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, media_path, duration_s, frame_rate, width, height, created_at, updated_at
		FROM clips WHERE id = ?
	`, id)
	return r.scanClip(row)
}

func (r *SQLiteRepository) scanClip(row *sql.Row) (*Clip, error) {
	var c Clip
	var createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.Name, &c.MediaPath, &c.DurationS, &c.FrameRate, &c.Width, &c.Height, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &c, nil
}

func (r *SQLiteRepository) ListClips(ctx context.Context) ([]*Clip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, media_path, duration_s, frame_rate, width, height, created_at, updated_at
		FROM clips ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Clip
	for rows.Next() {
		var c Clip
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.MediaPath, &c.DurationS, &c.FrameRate, &c.Width, &c.Height, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteClip(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM clip_state WHERE clip_id = ?", id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountClips(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clips").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetState(ctx context.Context, clipID string) (*ClipState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT clip_id, segments_data, crop_data, highlights_data, updated_at
		FROM clip_state WHERE clip_id = ?
	`, clipID)

	var s ClipState
	var segments, crop, highlights sql.NullString
	var updatedAt string
	err := row.Scan(&s.ClipID, &segments, &crop, &highlights, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Segments = []byte(segments.String)
	s.Crop = []byte(crop.String)
	s.Highlights = []byte(highlights.String)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &s, nil
}

func (r *SQLiteRepository) UpsertState(ctx context.Context, s *ClipState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clip_state (clip_id, segments_data, crop_data, highlights_data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(clip_id) DO UPDATE SET
			segments_data = excluded.segments_data,
			crop_data = excluded.crop_data,
			highlights_data = excluded.highlights_data,
			updated_at = excluded.updated_at
	`, s.ClipID, string(s.Segments), string(s.Crop), string(s.Highlights),
		s.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
