package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cctv-surveillance-reports/be/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// tickingClock returns a clock that advances one minute per call.
func tickingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func newActivityRepo(t *testing.T) *GormReports[models.ActivityReport, *models.ActivityReport] {
	repo := NewGormReports[models.ActivityReport](newTestDB(t))
	repo.now = tickingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return repo
}

func activity(location, datetime string, images ...string) *models.ActivityReport {
	return &models.ActivityReport{
		Datetime:  datetime,
		Location:  location,
		Findings:  "Suspicious vehicle parked near entrance",
		Intensity: "Medium",
		Images:    images,
	}
}

func TestCreateAssignsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := newActivityRepo(t)

	created, err := repo.Create(ctx, activity("Daska", "2024-01-10T08:00", "data:image/jpeg;base64,AAA", "data:image/jpeg;base64,BBB"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daska", stored.Location)
	assert.Equal(t, []string{"data:image/jpeg;base64,AAA", "data:image/jpeg;base64,BBB"}, stored.Images)
}

func TestCreateWithoutImagesStoresEmptyList(t *testing.T) {
	ctx := context.Background()
	repo := newActivityRepo(t)

	created, err := repo.Create(ctx, activity("Ugoki", "2024-01-10T08:00"))
	require.NoError(t, err)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.Images)
	assert.Empty(t, stored.Images)
}

func TestCreateRejectsOutOfEnumValues(t *testing.T) {
	ctx := context.Background()
	repo := newActivityRepo(t)

	rec := activity("Lahore", "2024-01-10T08:00")
	rec.Intensity = "Severe"
	_, err := repo.Create(ctx, rec)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{
		"`Lahore` is not a valid enum value for path `location`.",
		"`Severe` is not a valid enum value for path `intensity`.",
	}, ve.Messages)
	assert.Equal(t, ve.Messages[0]+", "+ve.Messages[1], err.Error())
	assert.True(t, IsValidation(err))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newActivityRepo(t)

	var ids []string
	for _, loc := range []string{"Daska", "Narowal", "Daska"} {
		created, err := repo.Create(ctx, activity(loc, "2024-01-10T08:00"))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})

	daska, err := repo.ListByLocation(ctx, "Daska")
	require.NoError(t, err)
	require.Len(t, daska, 2)
	assert.Equal(t, ids[2], daska[0].ID)
	assert.Equal(t, ids[0], daska[1].ID)

	none, err := repo.ListByLocation(ctx, "Chishtian")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdateReplacesAndKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := newActivityRepo(t)

	created, err := repo.Create(ctx, activity("Daska", "2024-01-10T08:00", "data:image/jpeg;base64,AAA"))
	require.NoError(t, err)
	createdAt := created.CreatedAt

	replacement := activity("Sambrial", "2024-01-11T09:15")
	replacement.Intensity = "Low"
	updated, err := repo.Update(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sambrial", stored.Location)
	assert.Equal(t, "Low", stored.Intensity)
	assert.Empty(t, stored.Images)
	assert.True(t, createdAt.Equal(stored.CreatedAt))
}

func TestUpdateMissingAndInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newActivityRepo(t)

	_, err := repo.Update(ctx, uuid.NewString(), activity("Daska", "2024-01-10T08:00"))
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := repo.Create(ctx, activity("Daska", "2024-01-10T08:00"))
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, activity("Nowhere", "2024-01-10T08:00"))
	assert.True(t, IsValidation(err))

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daska", stored.Location)
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	repo := newActivityRepo(t)

	created, err := repo.Create(ctx, activity("Daska", "2024-01-10T08:00"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)

	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusReportsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormReports[models.StatusReport](newTestDB(t))

	created, err := repo.Create(ctx, &models.StatusReport{
		Date:              "2024-01-15",
		Location:          "Khanewal",
		OpeningTime:       "09:00",
		ClosingTime:       "18:00",
		Status:            "Open",
		TotalCameras:      models.IntPtr(12),
		WorkingCameras:    models.IntPtr(12),
		NonWorkingCameras: models.IntPtr(3),
		TotalDaysRecorded: models.IntPtr(0),
	})
	require.NoError(t, err)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, models.Int(stored.TotalCameras))
	assert.Equal(t, 3, models.Int(stored.NonWorkingCameras))
	require.NotNil(t, stored.TotalDaysRecorded)
	assert.Equal(t, 0, *stored.TotalDaysRecorded)

	_, err = repo.Create(ctx, &models.StatusReport{Date: "2024-01-15", Location: "Khanewal"})
	assert.True(t, IsValidation(err))
}

func TestGormUsers(t *testing.T) {
	ctx := context.Background()
	users := NewGormUsers(newTestDB(t))

	require.NoError(t, users.Create(ctx, &models.User{Username: "saliha", PasswordHash: "h1", Role: "admin"}))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Username: "saliha", PasswordHash: "h2", Role: "user"}), ErrDuplicate)

	found, err := users.FindByUsername(ctx, "saliha")
	require.NoError(t, err)
	assert.Equal(t, "admin", found.Role)
	assert.Equal(t, "h1", found.PasswordHash)

	_, err = users.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, users.UpdatePassword(ctx, "saliha", "h3"))
	found, err = users.FindByUsername(ctx, "saliha")
	require.NoError(t, err)
	assert.Equal(t, "h3", found.PasswordHash)
	assert.ErrorIs(t, users.UpdatePassword(ctx, "ghost", "h4"), ErrNotFound)

	require.NoError(t, users.Create(ctx, &models.User{Username: "ahmed", PasswordHash: "h5", Role: "user"}))
	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ahmed", all[0].Username)
}
