package gym

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gymRowColumns = []string{
	"id", "owner_id", "name", "description", "street", "city", "state", "zip_code", "country",
	"facilities", "opening_time", "closing_time", "price_per_day", "price_per_week", "price_per_month",
	"currency", "rating", "created_at", "updated_at",
}

func setupGymMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func gymRow(id, ownerID int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(gymRowColumns).AddRow(
		id, ownerID, "Iron Temple", "Free weights", "1 Main St", "Austin", "TX", "73301", "US",
		"{sauna,pool}", "06:00", "22:00", 500, 2500, 9000, "usd", 4.5, now, now,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	req := CreateGymRequest{
		Name:        "Iron Temple",
		Address:     Address{City: "Austin"},
		Facilities:  []string{"sauna", "pool"},
		OpeningTime: "06:00",
		ClosingTime: "22:00",
		Pricing:     Pricing{PerDay: 500, PerWeek: 2500, PerMonth: 9000},
		Currency:    "usd",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gyms (owner_id, name, description")).
		WithArgs(7, "Iron Temple", "", "", "Austin", "", "", "", pq.Array([]string{"sauna", "pool"}),
			"06:00", "22:00", int64(500), int64(2500), int64(9000), "usd").
		WillReturnRows(gymRow(1, 7))

	g, err := repo.Create(context.Background(), 7, req)
	require.NoError(t, err)
	assert.Equal(t, 1, g.ID)
	assert.Equal(t, "Austin", g.City)
	assert.Equal(t, []string{"sauna", "pool"}, []string(g.Facilities))
	assert.Equal(t, int64(2500), g.PerWeek)
	assert.Equal(t, 4.5, g.Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM gyms WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrGymNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateForeignGymNotFound(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND ($2 = 0 OR owner_id = $2)")).
		WillReturnError(sql.ErrNoRows)

	name := "Hijacked"
	_, err := repo.Update(context.Background(), 3, 8, UpdateGymRequest{Name: &name})
	assert.ErrorIs(t, err, ErrGymNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateOwnGym(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE gyms")).
		WillReturnRows(gymRow(3, 7))

	day := int64(500)
	g, err := repo.Update(context.Background(), 3, 7, UpdateGymRequest{Pricing: &PricingUpdate{PerDay: &day}})
	require.NoError(t, err)
	assert.Equal(t, 3, g.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gyms WHERE id = $1")).
		WithArgs(3, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gyms WHERE id = $1")).
		WithArgs(3, 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 3, 7))
	assert.ErrorIs(t, repo.Delete(context.Background(), 3, 8), ErrGymNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteRefusesGymWithBookings(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gyms WHERE id = $1")).
		WithArgs(3, 7).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "bookings_gym_id_fkey"})

	assert.ErrorIs(t, repo.Delete(context.Background(), 3, 7), ErrGymBooked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Search(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("$3 = ANY(facilities)")).
		WithArgs("iron", "austin", "sauna", 20, 0).
		WillReturnRows(gymRow(1, 7))

	gyms, err := repo.Search(context.Background(), SearchFilter{Query: "iron", City: "austin", Facility: "sauna", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, gyms, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListRetriesTransientError(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM gyms ORDER BY created_at DESC")).
		WithArgs(20, 0).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectQuery(regexp.QuoteMeta("FROM gyms ORDER BY created_at DESC")).
		WithArgs(20, 0).
		WillReturnRows(gymRow(1, 7))

	gyms, err := repo.List(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, gyms, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
