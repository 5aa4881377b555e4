// Package idempotency is the durable claim store backing the Idempotency
// Claimer (§4.1): one record per (event_id, resource_key), race-safe via
// the table's unique composite key.
package idempotency

import (
	"context"
	"database/sql"
	"errors"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	libPostgres "github.com/LerianStudio/lib-commons/v2/commons/postgres"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/drithh/news-management/pkg"
)

// Status is the outcome of a claim attempt (§3, §4.1). NEW is never a
// stored value — it is the outcome of a successful claim insertion.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

const uniqueViolationCode = "23505"

// Claimer exposes the three operations §4.1 defines over a resource pair.
//
//go:generate mockgen --destination=claimer_mock.go --package=idempotency . Claimer
type Claimer interface {
	CheckAndClaim(ctx context.Context, eventID, resourceKey string) (Status, error)
	MarkCompleted(ctx context.Context, eventID, resourceKey string) error
	MarkFailed(ctx context.Context, eventID, resourceKey string) error
}

// dbConnection is the subset of *libPostgres.PostgresConnection this
// repository depends on, narrowed so tests can substitute a sqlmock-backed
// connection without a live database.
type dbConnection interface {
	GetDB() (*sql.DB, error)
}

// PostgresClaimer is the Postgres-backed implementation of Claimer.
type PostgresClaimer struct {
	connection dbConnection
	tableName  string
}

// NewPostgresClaimer returns a new instance of PostgresClaimer using the
// given Postgres connection.
func NewPostgresClaimer(pc *libPostgres.PostgresConnection) *PostgresClaimer {
	c := &PostgresClaimer{
		connection: pc,
		tableName:  "idempotency_keys",
	}

	if _, err := c.connection.GetDB(); err != nil {
		panic("Failed to connect database")
	}

	return c
}

// CheckAndClaim reads the record, then attempts an insert if none exists.
// Safety rests on the unique-key insert, not on the initial read (§4.1).
func (c *PostgresClaimer) CheckAndClaim(ctx context.Context, eventID, resourceKey string) (Status, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.idempotency.check_and_claim")
	defer span.End()

	db, err := c.connection.GetDB()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return "", pkg.StorageError{Op: "check_and_claim", Err: err}
	}

	status, err := c.read(ctx, db, eventID, resourceKey)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to read idempotency record", err)

		return "", pkg.StorageError{Op: "check_and_claim", Err: err}
	}

	switch status {
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusInProgress:
		return StatusInProgress, nil
	}

	insert := squirrel.Insert(c.tableName).
		Columns("idempotency_key", "resource_path", "status").
		Values(eventID, resourceKey, string(StatusInProgress)).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := insert.ToSql()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to build insert query", err)

		return "", pkg.StorageError{Op: "check_and_claim", Err: err}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			// Another worker claimed it between our read and our insert.
			return StatusInProgress, nil
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to insert idempotency record", err)

		return "", pkg.StorageError{Op: "check_and_claim", Err: err}
	}

	return StatusNew, nil
}

func (c *PostgresClaimer) read(ctx context.Context, db *sql.DB, eventID, resourceKey string) (Status, error) {
	var status string

	row := db.QueryRowContext(ctx,
		`SELECT status FROM idempotency_keys WHERE idempotency_key = $1 AND resource_path = $2`,
		eventID, resourceKey)

	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", err
	}

	return Status(status), nil
}

// MarkCompleted is an idempotent transition from any state to COMPLETED.
func (c *PostgresClaimer) MarkCompleted(ctx context.Context, eventID, resourceKey string) error {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.idempotency.mark_completed")
	defer span.End()

	db, err := c.connection.GetDB()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return pkg.StorageError{Op: "mark_completed", Err: err}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE idempotency_keys SET status = $1 WHERE idempotency_key = $2 AND resource_path = $3`,
		string(StatusCompleted), eventID, resourceKey)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update idempotency record", err)

		return pkg.StorageError{Op: "mark_completed", Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to read rows affected", err)

		return pkg.StorageError{Op: "mark_completed", Err: err}
	}

	if rows == 0 {
		// The row this worker inserted in CheckAndClaim is gone: a concurrent
		// MarkFailed (e.g. from a crash-recovery sweep) deleted it first.
		err := pkg.EntityNotFoundError{EntityType: "idempotency_key"}
		libOpentelemetry.HandleSpanError(&span, "Idempotency record vanished before completion", err)

		return err
	}

	return nil
}

// MarkFailed deletes the record so the next delivery can re-claim it. A
// race with another worker's fresh claim is accepted (§4.1, §9).
func (c *PostgresClaimer) MarkFailed(ctx context.Context, eventID, resourceKey string) error {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.idempotency.mark_failed")
	defer span.End()

	db, err := c.connection.GetDB()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return pkg.StorageError{Op: "mark_failed", Err: err}
	}

	_, err = db.ExecContext(ctx,
		`DELETE FROM idempotency_keys WHERE idempotency_key = $1 AND resource_path = $2`,
		eventID, resourceKey)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to delete idempotency record", err)

		return pkg.StorageError{Op: "mark_failed", Err: err}
	}

	return nil
}
