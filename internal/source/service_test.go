package source

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/kouign-amann/picview/internal/api"
	"github.com/kouign-amann/picview/internal/db"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

type fakeRemote struct {
	ranges  []models.DateRange
	list    []models.Picture
	updated []models.Picture
	err     error
	toggled []string
	known   []string // hashes the API knows without listing them
	backups map[string][]models.Backup
}

func (f *fakeRemote) Ping(ctx context.Context) error { return f.err }

func (f *fakeRemote) ListDateRanges(ctx context.Context) ([]models.DateRange, error) {
	return f.ranges, f.err
}

func (f *fakeRemote) ListPictures(ctx context.Context, start, end time.Time) ([]models.Picture, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Picture
	for _, p := range f.list {
		if !p.Info.CreationTimeDate.Before(start) && !p.Info.CreationTimeDate.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRemote) RecentlyUpdated(ctx context.Context, window time.Duration) ([]models.Picture, error) {
	return f.updated, f.err
}

func (f *fakeRemote) GetPicture(ctx context.Context, hash string) (models.Picture, error) {
	if f.err != nil {
		return models.Picture{}, f.err
	}
	for _, p := range f.list {
		if p.Hash == hash {
			return p, nil
		}
	}
	return models.Picture{}, &api.StatusError{StatusCode: http.StatusNotFound}
}

func (f *fakeRemote) PictureExists(ctx context.Context, hash string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, p := range f.list {
		if p.Hash == hash {
			return true, nil
		}
	}
	return slices.Contains(f.known, hash), nil
}

func (f *fakeRemote) ListBackups(ctx context.Context, hash string) ([]models.Backup, error) {
	if f.err != nil {
		return nil, f.err
	}
	if backups, ok := f.backups[hash]; ok {
		return backups, nil
	}
	return nil, &api.StatusError{StatusCode: http.StatusInternalServerError}
}

func (f *fakeRemote) SetAndPlanBackup(ctx context.Context, hash string, required bool) (models.Picture, error) {
	if f.err != nil {
		return models.Picture{}, f.err
	}
	f.toggled = append(f.toggled, hash)
	p, err := f.GetPicture(ctx, hash)
	p.BackupRequired = required
	return p, err
}

var november = time.Date(1980, 11, 1, 0, 0, 0, 0, time.UTC)

func testPicture(hash string, day int) models.Picture {
	return gallery.ConvertPicture(models.Picture{
		Hash: hash,
		Info: models.PictureInfo{CreationTime: models.FormatServerTime(november.AddDate(0, 0, day))},
	})
}

func newFixture(t *testing.T) (*fakeRemote, *db.DB, *Service) {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "picview.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	remote := &fakeRemote{
		ranges: []models.DateRange{{ID: 0, Start: november, End: november.AddDate(0, 1, 0), PictureCount: 2}},
		list:   []models.Picture{testPicture("aaaa", 2), testPicture("bbbb", 10)},
	}
	return remote, store, New(remote, store, nil)
}

func TestService_WritesThroughAndFallsBack(t *testing.T) {
	remote, _, svc := newFixture(t)
	ctx := context.Background()

	ranges, err := svc.ListDateRanges(ctx)
	require.NoError(t, err)
	pictures, err := svc.ListPictures(ctx, ranges[0].Start, ranges[0].End)
	require.NoError(t, err)
	require.Len(t, pictures, 2)
	assert.False(t, svc.Offline())

	remote.err = errDown

	cachedRanges, err := svc.ListDateRanges(ctx)
	require.NoError(t, err)
	assert.True(t, svc.Offline())
	require.Len(t, cachedRanges, 1)
	assert.True(t, ranges[0].Start.Equal(cachedRanges[0].Start))

	cached, err := svc.ListPictures(ctx, ranges[0].Start, ranges[0].End)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa", "bbbb"}, []string{cached[0].Hash, cached[1].Hash})

	p, err := svc.GetPicture(ctx, "bbbb")
	require.NoError(t, err)
	assert.Equal(t, "bbbb", p.Hash)

	remote.err = nil
	_, err = svc.ListDateRanges(ctx)
	require.NoError(t, err)
	assert.False(t, svc.Offline())
}

func TestService_OfflineWithoutCache(t *testing.T) {
	remote, _, svc := newFixture(t)
	remote.err = errDown

	_, err := svc.ListDateRanges(context.Background())
	assert.ErrorIs(t, err, ErrOffline)
	assert.ErrorIs(t, err, errDown)

	_, err = svc.GetPicture(context.Background(), "aaaa")
	assert.ErrorIs(t, err, ErrOffline)
}

func TestService_NoStore(t *testing.T) {
	remote := &fakeRemote{err: errDown}
	svc := New(remote, nil, nil)

	_, err := svc.ListDateRanges(context.Background())
	assert.ErrorIs(t, err, errDown)
	assert.NotErrorIs(t, err, ErrOffline)

	_, ok := svc.LastDateRange(context.Background(), nil)
	assert.False(t, ok)
	assert.NoError(t, svc.SaveLastDateRange(context.Background(), models.DateRange{}))
}

func TestService_NotFoundIsNotOffline(t *testing.T) {
	_, _, svc := newFixture(t)

	_, err := svc.GetPicture(context.Background(), "zzzz")
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.NotErrorIs(t, err, ErrOffline)
	assert.False(t, svc.Offline())
}

func TestService_GetPictureRefreshesBackups(t *testing.T) {
	remote, store, svc := newFixture(t)
	ctx := context.Background()
	plan := []models.Backup{{CrawlerID: "nas", StorageID: "s3", Status: models.BackupDone}}
	remote.backups = map[string][]models.Backup{"aaaa": plan}

	p, err := svc.GetPicture(ctx, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, plan, p.BackupList)

	cached, err := store.GetPicture(ctx, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, plan, cached.BackupList)

	// a failing plan keeps the backups sent with the picture
	p, err = svc.GetPicture(ctx, "bbbb")
	require.NoError(t, err)
	assert.Empty(t, p.BackupList)
}

func TestService_GetPictureDropsDeleted(t *testing.T) {
	remote, store, svc := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertPictures(ctx, remote.list))

	remote.list = remote.list[:1]
	_, err := svc.GetPicture(ctx, "bbbb")
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = store.GetPicture(ctx, "bbbb")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestService_CachedAt(t *testing.T) {
	remote, store, svc := newFixture(t)
	ctx := context.Background()
	assert.True(t, svc.LastSync(ctx).IsZero())

	_, err := svc.Sync(ctx)
	require.NoError(t, err)
	synced, err := store.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, synced.Equal(svc.LastSync(ctx)))
	assert.True(t, svc.CachedAt().IsZero())

	remote.err = errDown
	_, err = svc.ListDateRanges(ctx)
	require.NoError(t, err)
	assert.True(t, synced.Equal(svc.CachedAt()))

	assert.True(t, New(remote, nil, nil).LastSync(ctx).IsZero())
}

func TestService_RecentlyUpdatedCaches(t *testing.T) {
	remote, store, svc := newFixture(t)
	fresh := testPicture("aaaa", 2)
	fresh.BackupRequired = true
	remote.updated = []models.Picture{fresh}

	got, err := svc.RecentlyUpdated(context.Background(), 30*time.Second)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	cached, err := store.GetPicture(context.Background(), "aaaa")
	require.NoError(t, err)
	assert.True(t, cached.BackupRequired)

	remote.err = errDown
	_, err = svc.RecentlyUpdated(context.Background(), 30*time.Second)
	assert.ErrorIs(t, err, errDown)
}

func TestService_SetAndPlanBackup(t *testing.T) {
	remote, store, svc := newFixture(t)

	p, err := svc.SetAndPlanBackup(context.Background(), "bbbb", true)
	require.NoError(t, err)
	assert.True(t, p.BackupRequired)
	assert.Equal(t, []string{"bbbb"}, remote.toggled)

	cached, err := store.GetPicture(context.Background(), "bbbb")
	require.NoError(t, err)
	assert.True(t, cached.BackupRequired)

	remote.err = errDown
	_, err = svc.SetAndPlanBackup(context.Background(), "bbbb", false)
	assert.Error(t, err)
}

func TestService_LastDateRange(t *testing.T) {
	remote, _, svc := newFixture(t)
	ctx := context.Background()

	_, ok := svc.LastDateRange(ctx, remote.ranges)
	assert.False(t, ok)

	require.NoError(t, svc.SaveLastDateRange(ctx, remote.ranges[0]))

	r, ok := svc.LastDateRange(ctx, remote.ranges)
	require.True(t, ok)
	assert.Equal(t, 0, r.ID)

	// no ranges to look in: the month is kept
	_, ok = svc.LastDateRange(ctx, nil)
	assert.False(t, ok)
	_, ok = svc.LastDateRange(ctx, remote.ranges)
	assert.True(t, ok)
}

func TestService_LastDateRangeMicroseconds(t *testing.T) {
	_, _, svc := newFixture(t)
	ctx := context.Background()
	r := models.DateRange{
		ID:    3,
		Start: time.Date(2021, 3, 1, 10, 0, 0, 123456000, time.UTC),
		End:   time.Date(2021, 3, 31, 20, 6, 9, 569123000, time.UTC),
	}

	require.NoError(t, svc.SaveLastDateRange(ctx, r))
	got, ok := svc.LastDateRange(ctx, []models.DateRange{r})
	require.True(t, ok)
	assert.Equal(t, 3, got.ID)
}

func TestService_LastDateRangeForgetsStaleMonth(t *testing.T) {
	remote, store, svc := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveLastDateRange(ctx, remote.ranges[0]))
	other := []models.DateRange{{ID: 7, Start: november.AddDate(1, 0, 0), End: november.AddDate(1, 1, 0)}}
	_, ok := svc.LastDateRange(ctx, other)
	assert.False(t, ok)

	_, err := store.GetSetting(ctx, db.SettingLastDateRange)
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, store.SetSetting(ctx, db.SettingLastDateRange, "garbage"))
	_, ok = svc.LastDateRange(ctx, remote.ranges)
	assert.False(t, ok)
	_, err = store.GetSetting(ctx, db.SettingLastDateRange)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestService_Sync(t *testing.T) {
	remote, store, svc := newFixture(t)
	ctx := context.Background()

	n, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.CountPictures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	last, err := store.LastSync(ctx)
	require.NoError(t, err)
	assert.False(t, last.IsZero())

	remote.err = errDown
	_, err = svc.Sync(ctx)
	assert.Error(t, err)

	_, err = New(remote, nil, nil).Sync(ctx)
	assert.Error(t, err)
}

func TestService_SyncPrunesUnknownPictures(t *testing.T) {
	remote, store, svc := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertPictures(ctx, []models.Picture{testPicture("cccc", 3), testPicture("dddd", 4)}))
	remote.known = []string{"dddd"}

	n, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.GetPicture(ctx, "cccc")
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = store.GetPicture(ctx, "dddd")
	assert.NoError(t, err)

	count, err := store.CountPictures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUnavailable(t *testing.T) {
	assert.True(t, unavailable(errDown))
	assert.True(t, unavailable(&api.StatusError{StatusCode: http.StatusBadGateway}))
	assert.False(t, unavailable(&api.StatusError{StatusCode: http.StatusNotFound}))
	assert.False(t, unavailable(context.Canceled))
}
