package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/tracing"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrVersionConflict  = errors.New("document version conflict")
)

// UserDocument is a stored document together with its owner.
type UserDocument struct {
	UserID   string             `json:"userId"`
	Document trainings.Document `json:"document"`
}

type Repo struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db:  db,
		now: time.Now,
	}
}

func (r *Repo) Get(ctx context.Context, userID string) (_ trainings.Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.documents.get")
	span.SetAttributes(attribute.String("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := uuid.Parse(userID); err != nil {
		return trainings.Document{}, ErrDocumentNotFound
	}

	var (
		docJson   []byte
		version   int64
		updatedAt time.Time
	)
	err = r.db.QueryRow(
		ctx,
		`SELECT document, version, updated_at FROM user_document WHERE user_id = $1;`,
		userID,
	).Scan(&docJson, &version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trainings.Document{}, ErrDocumentNotFound
		}
		return trainings.Document{}, fmt.Errorf("get document: %w", err)
	}

	return decodeDocument(docJson, version, updatedAt)
}

// Write stores the whole document, bumping its version and update time.
// With a nil expectedVersion the last writer wins. Otherwise the stored version must match,
// where 0 means the document must not exist yet.
func (r *Repo) Write(
	ctx context.Context,
	userID string,
	doc trainings.Document,
	expectedVersion *int64,
) (_ trainings.Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.documents.write")
	span.SetAttributes(attribute.String("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := uuid.Parse(userID); err != nil {
		return trainings.Document{}, fmt.Errorf("invalid user id [%s]: %w", userID, err)
	}

	updatedAt := r.now().UTC()
	doc.UpdatedAt = updatedAt
	docJson, err := json.Marshal(doc)
	if err != nil {
		return trainings.Document{}, fmt.Errorf("marshal document: %w", err)
	}

	var query string
	args := []any{userID, docJson, updatedAt}
	switch {
	case expectedVersion == nil:
		query = `INSERT INTO user_document (user_id, document, version, updated_at)
				VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id) DO UPDATE
				SET document = EXCLUDED.document,
					version = user_document.version + 1,
					updated_at = EXCLUDED.updated_at
			RETURNING version;`
	case *expectedVersion == 0:
		query = `INSERT INTO user_document (user_id, document, version, updated_at)
				VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING version;`
	default:
		query = `UPDATE user_document
				SET document = $2, version = version + 1, updated_at = $3
			WHERE user_id = $1 AND version = $4
			RETURNING version;`
		args = append(args, *expectedVersion)
	}

	var version int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trainings.Document{}, ErrVersionConflict
		}
		return trainings.Document{}, fmt.Errorf("write document: %w", err)
	}

	doc.Version = version
	span.SetAttributes(attribute.Int64("document.version", version))
	return doc, nil
}

// ListAll returns the documents of all users, used by backups.
func (r *Repo) ListAll(ctx context.Context) (_ []UserDocument, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.documents.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT user_id, document, version, updated_at FROM user_document ORDER BY user_id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []UserDocument
	for rows.Next() {
		var (
			userID    uuid.UUID
			docJson   []byte
			version   int64
			updatedAt time.Time
		)
		if err := rows.Scan(&userID, &docJson, &version, &updatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		doc, err := decodeDocument(docJson, version, updatedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, UserDocument{
			UserID:   userID.String(),
			Document: doc,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("documents.count", len(docs)))
	return docs, nil
}

// the version and update time columns are authoritative over what the JSON holds
func decodeDocument(docJson []byte, version int64, updatedAt time.Time) (trainings.Document, error) {
	var doc trainings.Document
	if err := json.Unmarshal(docJson, &doc); err != nil {
		return trainings.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	doc.Version = version
	doc.UpdatedAt = updatedAt
	return doc, nil
}
