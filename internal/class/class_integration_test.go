package class_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gymhub/internal/class"
	"gymhub/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ConcurrentEnrollNeverOverfills(t *testing.T) {
	conn := dbtest.Open(t)
	repo := class.NewRepository(conn)
	ctx := context.Background()

	owner := dbtest.CreateUser(t, conn, "owner@test.com", "owner")
	trainer := dbtest.CreateUser(t, conn, "trainer@test.com", "owner")
	gymID := dbtest.CreateGym(t, conn, owner, 1500)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	c, err := repo.Create(ctx, &class.Class{
		GymID:      gymID,
		Name:       "Spin",
		Instructor: class.Instructor{ID: trainer, Name: "Trainer"},
		StartTime:  start,
		EndTime:    start.Add(45 * time.Minute),
		Capacity:   3,
		Level:      class.LevelAll,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, c.DurationMinutes)

	const racers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < racers; i++ {
		userID := dbtest.CreateUser(t, conn, fmt.Sprintf("member%d@test.com", i), "user")
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := repo.Enroll(ctx, c.ID, userID)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if !errors.Is(err, class.ErrClassFull) {
				t.Errorf("unexpected error: %v", err)
			}
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, 3, successes)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Enrolled)
	assert.Equal(t, 0, got.Spots())

	var rows int
	require.NoError(t, conn.Get(&rows, `SELECT COUNT(*) FROM class_enrollments WHERE class_id = $1`, c.ID))
	assert.Equal(t, 3, rows)
}
