package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/model"
	"github.com/deppfellow/phonebook/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
)

type personRow struct {
	ID     string `db:"id"`
	Name   string `db:"name"`
	Number string `db:"number"`
}

func (r personRow) toModel() model.Person {
	return model.Person{ID: r.ID, Name: r.Name, Number: r.Number}
}

// PostgresPersonStore stores persons in the "persons" table created by the
// embedded migrations. Identifiers are UUIDs.
type PostgresPersonStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPersonStore(pool *pgxpool.Pool) *PostgresPersonStore {
	return &PostgresPersonStore{pool: pool}
}

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errs.InvalidIdentifier(id, err)
	}
	return parsed, nil
}

// queryPerson runs a statement returning at most one person row.
func (s *PostgresPersonStore) queryPerson(ctx context.Context, sql string, args ...any) (*model.Person, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.HandleError(pkgerrors.WithStack(err))
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[personRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sqlerr.HandleError(pkgerrors.WithStack(err))
	}

	person := row.toModel()
	return &person, nil
}

func (s *PostgresPersonStore) FindAll(ctx context.Context) ([]model.Person, error) {
	rows, err := s.pool.Query(ctx, `SELECT id::text AS id, name, number FROM persons`)
	if err != nil {
		return nil, sqlerr.HandleError(pkgerrors.WithStack(err))
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[personRow])
	if err != nil {
		return nil, sqlerr.HandleError(pkgerrors.WithStack(err))
	}

	persons := make([]model.Person, 0, len(collected))
	for _, row := range collected {
		persons = append(persons, row.toModel())
	}
	return persons, nil
}

func (s *PostgresPersonStore) FindByID(ctx context.Context, id string) (*model.Person, error) {
	parsed, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	return s.queryPerson(ctx,
		`SELECT id::text AS id, name, number FROM persons WHERE id = $1`,
		parsed,
	)
}

func (s *PostgresPersonStore) Create(ctx context.Context, name, number string) (*model.Person, error) {
	person := model.Person{Name: name, Number: number}
	if err := person.Validate(); err != nil {
		return nil, err
	}

	created, err := s.queryPerson(ctx,
		`INSERT INTO persons (name, number) VALUES ($1, $2) RETURNING id::text AS id, name, number`,
		name, number,
	)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errs.Unhandled("insert person returned no row", nil)
	}
	return created, nil
}

func (s *PostgresPersonStore) UpdateNumber(ctx context.Context, id, number string) (*model.Person, error) {
	parsed, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateNumber(number); err != nil {
		return nil, err
	}

	return s.queryPerson(ctx,
		`UPDATE persons SET number = $2 WHERE id = $1 RETURNING id::text AS id, name, number`,
		parsed, number,
	)
}

func (s *PostgresPersonStore) DeleteByID(ctx context.Context, id string) error {
	parsed, err := parseUUID(id)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM persons WHERE id = $1`, parsed); err != nil {
		return sqlerr.HandleError(pkgerrors.WithStack(err))
	}
	return nil
}

func (s *PostgresPersonStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM persons`).Scan(&n); err != nil {
		return 0, sqlerr.HandleError(pkgerrors.WithStack(err))
	}
	return n, nil
}

func (s *PostgresPersonStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errs.Unhandled("ping postgres", pkgerrors.WithStack(err))
	}
	return nil
}
