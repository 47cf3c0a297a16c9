package services

import (
	"testing"

	"feedadmin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsStoreSetOverwritesAndDeletes(t *testing.T) {
	store := NewOptionsStore(NewSQLExecutor(newTestDB(t)))

	v, err := store.Get(bg, "missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	require.NoError(t, store.Set(bg, "license_key", "abc"))
	require.NoError(t, store.Set(bg, "license_key", "def"))
	v, err = store.Get(bg, "license_key", "")
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	require.NoError(t, store.Delete(bg, "license_key", "never_set"))
	v, err = store.Get(bg, "license_key", "gone")
	require.NoError(t, err)
	assert.Equal(t, "gone", v)
}

func TestOptionsStoreJSON(t *testing.T) {
	store := NewOptionsStore(NewSQLExecutor(newTestDB(t)))

	var settings models.Settings
	found, err := store.GetJSON(bg, models.OptSettings, &settings)
	require.NoError(t, err)
	assert.False(t, found)

	in := models.DefaultSettings()
	in.CustomCSS = ".feed { color: red; }"
	require.NoError(t, store.SetJSON(bg, models.OptSettings, in))

	found, err = store.GetJSON(bg, models.OptSettings, &settings)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, settings)
}

func TestNoticeServiceAddIsIdempotentAndRemove(t *testing.T) {
	notices := NewNoticeService(NewOptionsStore(NewSQLExecutor(newTestDB(t))))

	require.NoError(t, notices.Add(bg, models.NoticeLicenseExpired))
	require.NoError(t, notices.Add(bg, models.NoticeLicenseExpired))
	require.NoError(t, notices.Add(bg, models.NoticeLicenseInactive))

	list, err := notices.List(bg)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, notices.Remove(bg, models.NoticeLicenseExpired))
	list, err = notices.List(bg)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NoticeLicenseInactive, list[0].ID)
}
