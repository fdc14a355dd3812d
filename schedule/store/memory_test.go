package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/schedule/store"
)

func batchShift(id string, hour int) schedule.Shift {
	return schedule.Shift{
		ID:         schedule.ShiftID(id),
		EmployeeID: "emp-1",
		StartTime:  time.Date(2025, time.March, 3, hour, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, time.March, 3, hour+4, 0, 0, 0, time.UTC),
		Status:     schedule.StatusScheduled,
	}
}

func TestInsertBatch_DuplicateWithinBatchIsAllOrNothing(t *testing.T) {
	// GIVEN: A batch where one explicit ID appears twice
	mem := store.NewMemory()
	batch := []schedule.Shift{
		batchShift("s1", 9),
		batchShift("s2", 14),
		batchShift("s1", 18),
	}

	// WHEN: Inserting the batch
	_, err := mem.InsertBatch(context.Background(), batch)

	// THEN: The batch is rejected and no row landed, not even the first
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice in batch")

	n, countErr := mem.Count(context.Background(), schedule.ShiftFilter{})
	require.NoError(t, countErr)
	assert.Zero(t, n)
}

func TestInsertBatch_CollisionWithStoredRowIsAllOrNothing(t *testing.T) {
	mem := store.NewMemory()
	_, err := mem.Insert(context.Background(), batchShift("s1", 9))
	require.NoError(t, err)

	_, err = mem.InsertBatch(context.Background(), []schedule.Shift{
		batchShift("s2", 14),
		batchShift("s1", 18),
	})
	require.Error(t, err)

	// Only the pre-existing row remains.
	n, countErr := mem.Count(context.Background(), schedule.ShiftFilter{})
	require.NoError(t, countErr)
	assert.Equal(t, 1, n)
}
