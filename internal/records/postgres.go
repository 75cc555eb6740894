package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
	_ "github.com/lib/pq"
)

// Postgres implements Store on top of PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// ConnectPostgres opens the database, verifies the connection and ensures
// the file_records table exists.
func ConnectPostgres(connectionString string) (*Postgres, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &Postgres{db: db}
	if err := p.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[Postgres] connected")
	return p, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS file_records (
		id UUID PRIMARY KEY,
		filename VARCHAR(255) NOT NULL,
		content_hash VARCHAR(64) NOT NULL,
		size BIGINT NOT NULL,
		encoding VARCHAR(50),
		mimetype VARCHAR(100),
		namespace VARCHAR(100) NOT NULL DEFAULT 'default',
		storage_type VARCHAR(10) NOT NULL DEFAULT 'local',
		options JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_file_records_namespace ON file_records(namespace);
	CREATE INDEX IF NOT EXISTS idx_file_records_filename ON file_records(filename);
	CREATE INDEX IF NOT EXISTS idx_file_records_content_hash ON file_records(content_hash);
	CREATE INDEX IF NOT EXISTS idx_file_records_created_at ON file_records(created_at DESC);
	`
	_, err := p.db.Exec(query)
	return err
}

const recordColumns = `id, filename, content_hash, size, encoding, mimetype, namespace, storage_type, options, created_at, updated_at`

func (p *Postgres) Create(ctx context.Context, rec *models.FileRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	options, err := marshalOptions(rec.Options)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO file_records (` + recordColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = p.db.ExecContext(ctx, query,
		rec.ID,
		rec.Filename,
		rec.ContentHash,
		rec.Size,
		rec.Encoding,
		rec.Mimetype,
		rec.Namespace,
		string(rec.StorageType),
		options,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (p *Postgres) FindByID(ctx context.Context, id, namespace string) (models.FileRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM file_records WHERE id = $1 AND namespace = $2`
	rec, err := scanRecord(p.db.QueryRowContext(ctx, query, id, namespace))
	if err == sql.ErrNoRows {
		return models.FileRecord{}, errs.NotFoundID(id)
	}
	if err != nil {
		return models.FileRecord{}, err
	}
	return rec, nil
}

func (p *Postgres) FindAndCount(ctx context.Context, q Query) ([]models.FileRecord, int64, error) {
	where, args := buildWhere(q)

	var total int64
	countQuery := `SELECT COUNT(*) FROM file_records` + where
	if err := p.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery := fmt.Sprintf(
		`SELECT `+recordColumns+` FROM file_records%s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2,
	)
	rows, err := p.db.QueryContext(ctx, pageQuery, append(args, q.Offset, q.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var page []models.FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		page = append(page, rec)
	}
	return page, total, rows.Err()
}

func (p *Postgres) Save(ctx context.Context, rec *models.FileRecord) error {
	rec.UpdatedAt = time.Now().UTC()

	options, err := marshalOptions(rec.Options)
	if err != nil {
		return err
	}

	query := `
	UPDATE file_records SET
		filename = $2,
		content_hash = $3,
		size = $4,
		encoding = $5,
		mimetype = $6,
		namespace = $7,
		storage_type = $8,
		options = $9,
		updated_at = $10
	WHERE id = $1
	`
	result, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.Filename,
		rec.ContentHash,
		rec.Size,
		rec.Encoding,
		rec.Mimetype,
		rec.Namespace,
		string(rec.StorageType),
		options,
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errs.NotFoundID(rec.ID)
	}
	return nil
}

func (p *Postgres) DestroyByIDs(ctx context.Context, ids []string, namespace string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, namespace)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf(
		`DELETE FROM file_records WHERE namespace = $1 AND id IN (%s)`,
		strings.Join(placeholders, ", "),
	)
	_, err := p.db.ExecContext(ctx, query, args...)
	return err
}

// buildWhere translates a Query into a WHERE clause. Size bounds are strict
// comparisons in bytes; an explicit query namespace replaces the filter's
// namespace substring with an exact match.
func buildWhere(q Query) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	f := q.Filter
	if q.Namespace != "" {
		add("namespace = $%d", q.Namespace)
	} else if f.Namespace != "" {
		add("namespace LIKE $%d", "%"+f.Namespace+"%")
	}
	if f.ID != "" {
		add("id = $%d", f.ID)
	}
	if f.Filename != "" {
		add("filename LIKE $%d", "%"+f.Filename+"%")
	}
	if f.Size != nil {
		if f.Size.MinKB != nil {
			add("size > $%d", *f.Size.MinKB*1024)
		}
		if f.Size.MaxKB != nil {
			add("size < $%d", *f.Size.MaxKB*1024)
		}
	}
	if f.CreatedAt != nil {
		if f.CreatedAt.StartTime != nil {
			add("created_at >= $%d", *f.CreatedAt.StartTime)
		}
		if f.CreatedAt.EndTime != nil {
			add("created_at <= $%d", *f.CreatedAt.EndTime)
		}
	}
	if f.UpdatedAt != nil {
		if f.UpdatedAt.StartTime != nil {
			add("updated_at >= $%d", *f.UpdatedAt.StartTime)
		}
		if f.UpdatedAt.EndTime != nil {
			add("updated_at <= $%d", *f.UpdatedAt.EndTime)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (models.FileRecord, error) {
	var rec models.FileRecord
	var encoding, mimetype sql.NullString
	var options []byte
	var storageType string

	err := row.Scan(
		&rec.ID,
		&rec.Filename,
		&rec.ContentHash,
		&rec.Size,
		&encoding,
		&mimetype,
		&rec.Namespace,
		&storageType,
		&options,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return models.FileRecord{}, err
	}
	rec.Encoding = encoding.String
	rec.Mimetype = mimetype.String
	rec.StorageType = models.StorageType(storageType)
	if len(options) > 0 {
		if err := json.Unmarshal(options, &rec.Options); err != nil {
			return models.FileRecord{}, fmt.Errorf("failed to parse options for %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func marshalOptions(opts map[string]string) ([]byte, error) {
	if len(opts) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}
	return data, nil
}
