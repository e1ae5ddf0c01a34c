package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tour-sync/internal/models"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *RunRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return mock, NewRunRepository(gdb)
}

func sampleRun() *models.RunRecord {
	report := &models.RunReport{
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		TotalTime: 90 * time.Second,
		Results: []models.TourResult{
			{Tour: "model-x", Success: true, VirtualTourID: "vt-1", ScenesCount: 3, Duration: 2 * time.Second},
			{Tour: "broken", Error: "tour broken: create tour: boom"},
		},
	}
	return models.NewRunRecord("api.example.com", "/data/tours", report)
}

func TestSaveRun_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	run := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "run_records"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "tour_records"`).
		WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveRun(run))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, run.TourCount)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, run.StartedAt.Add(90*time.Second), run.FinishedAt)
	assert.Equal(t, run.ID, run.Tours[1].RunID)
	assert.Equal(t, int64(2000), run.Tours[0].DurationMs)
}

func TestSaveRun_RollsBackOnError(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "run_records"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveRun(sampleRun())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun_WithoutTours(t *testing.T) {
	mock, repo := setupMockDB(t)
	run := models.NewRunRecord("api.example.com", "/data", &models.RunReport{StartedAt: time.Now()})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "run_records"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveRun(run))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRuns(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "domain", "source_root", "tour_count", "failed"}).
		AddRow("6f1c2a4e-8b7d-4c1e-9a3b-2d5e7f901234", "api.example.com", "/data", 4, 1)
	mock.ExpectQuery(`SELECT \* FROM "run_records" ORDER BY started_at desc LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(rows)

	runs, err := repo.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "api.example.com", runs[0].Domain)
	assert.Equal(t, 4, runs[0].TourCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
