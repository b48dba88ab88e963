package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/studyon/billing/internal/apperrors"
	"github.com/studyon/billing/internal/models"
)

type CourseRepo struct {
	DB DBTX
}

const getCourseByCode = `-- name: GetCourseByCode
SELECT code, title, kind, price FROM courses
WHERE code = $1
`

func (r *CourseRepo) GetCourseByCode(ctx context.Context, code string) (models.Course, error) {
	rows, _ := r.DB.Query(ctx, getCourseByCode, code)
	course, err := pgx.CollectOneRow(rows, rowToCourse)

	switch {
	case err == nil:
		return course, nil
	case errors.Is(err, pgx.ErrNoRows):
		return course, apperrors.ErrCourseNotFound
	default:
		return course, fmt.Errorf("db error: %w", err)
	}
}

const listCourses = `-- name: ListCourses
SELECT code, title, kind, price FROM courses
ORDER BY code
`

func (r *CourseRepo) ListCourses(ctx context.Context) ([]models.Course, error) {
	rows, _ := r.DB.Query(ctx, listCourses)
	courses, err := pgx.CollectRows(rows, rowToCourse)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return courses, nil
}

func rowToCourse(row pgx.CollectableRow) (models.Course, error) {
	var c models.Course
	err := row.Scan(&c.Code, &c.Title, &c.Kind, &c.Price)
	return c, err
}
