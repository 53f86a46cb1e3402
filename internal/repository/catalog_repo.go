package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

// CatalogRepo reads the institution's course catalog
type CatalogRepo interface {
	Lookup(ctx context.Context, code string) (*model.Course, error)
	Search(ctx context.Context, prefix string, limit int) ([]model.Course, error)
	Close()
}

type catalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepo connects to the Postgres catalog at dsn
func NewCatalogRepo(ctx context.Context, dsn string) (CatalogRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect catalog: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	return &catalogRepo{pool: pool}, nil
}

const catalogColumns = `code, title, credits_min, credits_max, coalesce(prerequisite, ''), coalesce(terms, '{}')`

// Codes are compared in canonical form: no whitespace or hyphens, upper case.
const canonicalCodeSQL = `upper(regexp_replace(code, '[\s-]', '', 'g'))`

func (r *catalogRepo) Lookup(ctx context.Context, code string) (*model.Course, error) {
	sql := `SELECT ` + catalogColumns + ` FROM courses WHERE ` + canonicalCodeSQL + ` = $1 LIMIT 1`
	row := r.pool.QueryRow(ctx, sql, requirements.CanonicalCode(code))

	course, err := scanCourse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup course %s: %w", code, err)
	}
	return &course, nil
}

func (r *catalogRepo) Search(ctx context.Context, prefix string, limit int) ([]model.Course, error) {
	if limit <= 0 {
		limit = 25
	}
	sql := `SELECT ` + catalogColumns + ` FROM courses WHERE ` + canonicalCodeSQL + ` LIKE $1 ORDER BY code LIMIT $2`
	rows, err := r.pool.Query(ctx, sql, requirements.CanonicalCode(prefix)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *catalogRepo) Close() {
	r.pool.Close()
}

func scanCourse(row pgx.Row) (model.Course, error) {
	var (
		course     model.Course
		minCredits float64
		maxCredits float64
		terms      []string
	)
	if err := row.Scan(&course.Code, &course.Title, &minCredits, &maxCredits, &course.Prerequisite, &terms); err != nil {
		return model.Course{}, err
	}
	course.Code = strings.TrimSpace(course.Code)
	if maxCredits > minCredits {
		course.Credits = model.RangeCredits(minCredits, maxCredits)
	} else {
		course.Credits = model.FixedCredits(minCredits)
	}
	if len(terms) > 0 {
		course.Terms = terms
	}
	return course, nil
}
