// Package mastery implements the MasteryRecord repository using PostgreSQL.
// The filtered listing is built with squirrel since every filter field is
// optional.
package mastery

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/oratoria/oratoria-backend/internal/adapter/postgres"
	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Repo provides mastery record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new mastery repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const masteryColumns = `id, user_id, speech_id, word, correct_count, missed_count,
       hesitated_count, is_simple, last_seen_at`

const getBySpeechIDSQL = `
SELECT ` + masteryColumns + `
FROM mastery_records
WHERE speech_id = $1 AND user_id = $2
ORDER BY word`

const upsertSQL = `
INSERT INTO mastery_records (id, user_id, speech_id, word, correct_count, missed_count,
                             hesitated_count, is_simple, last_seen_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (speech_id, word) DO UPDATE
SET correct_count   = EXCLUDED.correct_count,
    missed_count    = EXCLUDED.missed_count,
    hesitated_count = EXCLUDED.hesitated_count,
    last_seen_at    = EXCLUDED.last_seen_at`

// GetBySpeechID returns all mastery records of a speech ordered by word.
func (r *Repo) GetBySpeechID(ctx context.Context, userID, speechID uuid.UUID) ([]*domain.MasteryRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getBySpeechIDSQL, speechID, userID)
	if err != nil {
		return nil, fmt.Errorf("get mastery records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("get mastery records: %w", err)
	}

	return records, nil
}

// Upsert writes the given records in one batch. Existing (speech_id, word)
// rows have their counters replaced with the in-memory values.
func (r *Repo) Upsert(ctx context.Context, userID, speechID uuid.UUID, records []*domain.MasteryRecord) error {
	if len(records) == 0 {
		return nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for _, rec := range records {
		id := rec.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(upsertSQL,
			id, userID, speechID, rec.Word,
			rec.CorrectCount, rec.MissedCount, rec.HesitatedCount,
			rec.IsSimple, rec.LastSeenAt)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return postgres.MapError(err, "mastery_record", speechID)
		}
	}

	return nil
}

// List returns mastery records matching the filter along with the total count.
// Struggling words are sorted to the front, then by miss count descending.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, filter domain.MasteryFilter) ([]*domain.MasteryRecord, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	pred := sq.And{sq.Eq{"user_id": userID}}
	if filter.SpeechID != nil {
		pred = append(pred, sq.Eq{"speech_id": *filter.SpeechID})
	}
	if filter.Struggling != nil {
		if *filter.Struggling {
			pred = append(pred, sq.Expr("(missed_count > 0 OR hesitated_count > 0)"))
		} else {
			pred = append(pred, sq.Eq{"missed_count": 0, "hesitated_count": 0})
		}
	}
	if filter.Simple != nil {
		pred = append(pred, sq.Eq{"is_simple": *filter.Simple})
	}
	if filter.MinCorrect != nil {
		pred = append(pred, sq.GtOrEq{"correct_count": *filter.MinCorrect})
	}

	countQuery, countArgs, err := psql.Select("count(*)").
		From("mastery_records").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build mastery count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count mastery records: %w", err)
	}

	listBuilder := psql.Select(masteryColumns).
		From("mastery_records").
		Where(pred).
		OrderBy("(missed_count + hesitated_count) DESC", "missed_count DESC", "word ASC")
	if filter.Limit > 0 {
		listBuilder = listBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		listBuilder = listBuilder.Offset(uint64(filter.Offset))
	}

	listQuery, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build mastery list query: %w", err)
	}

	rows, err := querier.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list mastery records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list mastery records: %w", err)
	}

	return records, total, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanRecord(row pgx.Row) (*domain.MasteryRecord, error) {
	var m domain.MasteryRecord
	if err := row.Scan(&m.ID, &m.UserID, &m.SpeechID, &m.Word,
		&m.CorrectCount, &m.MissedCount, &m.HesitatedCount,
		&m.IsSimple, &m.LastSeenAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanRecords(rows pgx.Rows) ([]*domain.MasteryRecord, error) {
	var records []*domain.MasteryRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if records == nil {
		records = []*domain.MasteryRecord{}
	}

	return records, nil
}
