package class

import (
	"context"
	"database/sql"
	"errors"

	"gymhub/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrNotEnrolled     = errors.New("not enrolled")
	ErrInvalidTimes    = errors.New("class must end after it starts")
)

const classColumns = `id, gym_id, name, description,
	instructor_id, instructor_name, instructor_avatar, instructor_specialization,
	start_time, end_time, (EXTRACT(EPOCH FROM (end_time - start_time)) / 60)::int AS duration_minutes,
	capacity, enrolled, level, type, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Class) (*Class, error) {
	query := `
		INSERT INTO classes (gym_id, name, description, instructor_id, instructor_name, instructor_avatar,
			instructor_specialization, start_time, end_time, capacity, level, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + classColumns

	var out Class
	err := r.db.GetContext(ctx, &out, query,
		c.GymID, c.Name, c.Description,
		c.Instructor.ID, c.Instructor.Name, c.Instructor.Avatar, c.Instructor.Specialization,
		c.StartTime, c.EndTime, c.Capacity, c.Level, c.Type,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "classes_time_order" {
			return nil, ErrInvalidTimes
		}
		return nil, err
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Class, error) {
	var c Class
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &c, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListByGym(ctx context.Context, gymID int) ([]Class, error) {
	classes := []Class{}
	err := db.RetryRead(ctx, func(ctx context.Context) error {
		classes = classes[:0]
		return r.db.SelectContext(ctx, &classes,
			`SELECT `+classColumns+` FROM classes WHERE gym_id = $1 ORDER BY start_time, id`, gymID)
	})
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}

func (r *repository) Enroll(ctx context.Context, classID, userID int) (*Class, error) {
	var c Class
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO class_enrollments (class_id, user_id) VALUES ($1, $2)`, classID, userID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) {
				switch pqErr.Code {
				case "23505":
					return ErrAlreadyEnrolled
				case "23503":
					return ErrClassNotFound
				}
			}
			return err
		}

		err = tx.GetContext(ctx, &c, `
			UPDATE classes SET enrolled = enrolled + 1
			WHERE id = $1 AND enrolled < capacity
			RETURNING `+classColumns, classID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClassFull
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Unenroll(ctx context.Context, classID, userID int) (*Class, error) {
	var c Class
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM class_enrollments WHERE class_id = $1 AND user_id = $2`, classID, userID)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			exists, err := db.Exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM classes WHERE id = $1)`, classID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrClassNotFound
			}
			return ErrNotEnrolled
		}

		return tx.GetContext(ctx, &c, `
			UPDATE classes SET enrolled = GREATEST(enrolled - 1, 0)
			WHERE id = $1
			RETURNING `+classColumns, classID)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
