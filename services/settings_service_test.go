package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"feedadmin/models"
	"feedadmin/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsSaveValidates(t *testing.T) {
	db := NewSQLExecutor(newTestDB(t))
	svc := NewSettingsService(NewOptionsStore(db), NewFeedStore(db))

	got, err := svc.Get(bg)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)

	bad := models.DefaultSettings()
	bad.CacheCronInterval = "every-second"
	err = svc.Save(bg, bad)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "cache_cron_interval")

	good := models.DefaultSettings()
	good.CachingType = models.CachingTypeBackground
	require.NoError(t, svc.Save(bg, good))
	got, err = svc.Get(bg)
	require.NoError(t, err)
	assert.Equal(t, good, got)
}

func TestSettingsExportImport(t *testing.T) {
	db := NewSQLExecutor(newTestDB(t))
	feeds := NewFeedStore(db)
	svc := NewSettingsService(NewOptionsStore(db), feeds)

	_, err := feeds.Create(bg, "Homepage", `{"cols":3}`)
	require.NoError(t, err)
	custom := models.DefaultSettings()
	custom.GDPR = "yes"
	require.NoError(t, svc.Save(bg, custom))

	export, err := svc.Export(bg)
	require.NoError(t, err)
	assert.Equal(t, 1, export.Version)
	require.Len(t, export.Feeds, 1)

	raw, err := json.Marshal(export)
	require.NoError(t, err)

	otherDB := NewSQLExecutor(newTestDB(t))
	other := NewSettingsService(NewOptionsStore(otherDB), NewFeedStore(otherDB))
	result, err := other.Import(bg, string(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, result.FeedsImported)
	assert.Equal(t, "yes", result.Settings.GDPR)

	_, err = other.Import(bg, "not json")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSourceStoreSaveKeepsCreatedAt(t *testing.T) {
	sources := NewSourceStore(NewSQLExecutor(newTestDB(t)))

	first, err := sources.Save(bg, models.Source{AccountID: "1784", AccountType: models.AccountTypeBusiness, Username: "shop", AccessToken: "t1"})
	require.NoError(t, err)
	second, err := sources.Save(bg, models.Source{AccountID: "1784", AccountType: models.AccountTypeBusiness, Username: "shop", AccessToken: "t2"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := sources.Get(bg, "1784")
	require.NoError(t, err)
	assert.Equal(t, "t2", got.AccessToken)

	list, err := sources.List(bg)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, sources.Delete(bg, "1784"))
	assert.ErrorIs(t, sources.Delete(bg, "1784"), ErrSourceNotFound)
	_, err = sources.Get(bg, "1784")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestSQLFeedCache(t *testing.T) {
	cache := NewSQLFeedCache(NewSQLExecutor(newTestDB(t)))

	require.NoError(t, cache.Set(bg, 1, "acct-a", "media", `{"data":[]}`, time.Hour))
	require.NoError(t, cache.Set(bg, 2, "acct-b", "media", `{"data":[1]}`, time.Hour))
	require.NoError(t, cache.Set(bg, 3, "acct-b", "header", `{}`, -time.Minute))

	v, ok, err := cache.Get(bg, 1, "acct-a", "media")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"data":[]}`, v)

	_, ok, err = cache.Get(bg, 3, "acct-b", "header")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := cache.ClearAccount(bg, "acct-b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = cache.Count(bg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCacheServiceSchedule(t *testing.T) {
	db := NewSQLExecutor(newTestDB(t))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sched := scheduler.New(scheduler.WithClock(func() time.Time { return now }), scheduler.WithLocation(time.UTC))
	cache := NewSQLFeedCache(db)
	svc := NewCacheService(cache, NewOptionsStore(db), sched, NewActivityLogger(db))

	settings := models.DefaultSettings()
	require.NoError(t, svc.ApplySchedule(settings))
	_, ok := svc.NextClear()
	assert.False(t, ok)

	settings.CachingType = models.CachingTypeBackground
	settings.CacheCronInterval = "24hours"
	settings.CacheCronTime = 3
	settings.CacheCronAmPm = "pm"
	require.NoError(t, svc.ApplySchedule(settings))
	next, ok := svc.NextClear()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC), next)

	settings.CacheCronTime = 12
	settings.CacheCronAmPm = "am"
	require.NoError(t, svc.ApplySchedule(settings))
	next, _ = svc.NextClear()
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), next)

	require.NoError(t, cache.Set(bg, 1, "a", "media", "x", time.Hour))
	now = next
	assert.Equal(t, 1, sched.RunDue(context.Background()))

	entries, err := svc.Entries(bg)
	require.NoError(t, err)
	assert.Equal(t, int64(0), entries)

	last, err := svc.LastCleared(bg)
	require.NoError(t, err)
	assert.NotZero(t, last)

	logs, err := NewActivityLogger(db).Recent(bg, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionScheduledCacheWipe, logs[0].Action)

	settings.CachingType = models.CachingTypePage
	require.NoError(t, svc.ApplySchedule(settings))
	_, ok = svc.NextClear()
	assert.False(t, ok)
}
