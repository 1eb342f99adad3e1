package api

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

const pictureJSON = `{
	"hash": "aaaa",
	"info": {"creation_time": "1972-03-01T20:00:03.000000Z", "thumbnail": "eHh4"},
	"backup_required": true,
	"file_list": [{"crawler_id": "laptop", "resolution": [1523, 2267], "picture_path": "/home/me/a.jpg", "last_seen": "2021-03-31T20:06:09.569000Z"}],
	"backup_list": [{"crawler_id": "laptop", "storage_id": "s3", "file_path": "x/aaaa.jpg", "status": "DONE", "creation_time": "2021-03-31T20:06:09.569000Z"}]
}`

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://example.com", Proxy: "gopher://proxy:70"})
	assert.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://example.com/api/", Proxy: "socks5://127.0.0.1:1080"})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.BaseURL())

	_, err = NewClient(Config{BaseURL: "http://example.com", Proxy: "http://127.0.0.1:3128"})
	assert.NoError(t, err)
}

func TestPing(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ping":"ok"}`))
	}))

	assert.NoError(t, client.Ping(context.Background()))
}

func TestListDateRanges(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/picture/count", r.URL.Path)
		w.Write([]byte(`[
			{"date": "1980-11-01T00:00:00.000000Z", "count": 3, "start_date": "1980-11-01T00:00:00.000000Z", "end_date": "1980-12-01T00:00:00.000000Z"},
			{"date": "bad", "count": 1, "start_date": "bad", "end_date": "bad"},
			{"date": "1981-01-01T00:00:00.000000Z", "count": 5, "start_date": "1981-01-01T00:00:00.000000Z", "end_date": "1981-02-01T00:00:00.000000Z"}
		]`))
	}))

	ranges, err := client.ListDateRanges(context.Background())
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, 0, ranges[0].ID)
	assert.Equal(t, 3, ranges[0].PictureCount)
	assert.Equal(t, 2, ranges[1].ID)
	assert.Equal(t, 1981, ranges[1].Start.Year())
}

func TestListPictures(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/picture/list", r.URL.Path)
		assert.Equal(t, "1980-11-01T00:00:00.000Z", r.URL.Query().Get("start"))
		assert.Equal(t, "1980-12-01T00:00:00.000Z", r.URL.Query().Get("end"))
		w.Write([]byte("[" + pictureJSON + "]"))
	}))

	start := time.Date(1980, 11, 1, 0, 0, 0, 0, time.UTC)
	pictures, err := client.ListPictures(context.Background(), start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, pictures, 1)

	p := pictures[0]
	assert.Equal(t, "aaaa", p.Hash)
	assert.Equal(t, 1, p.Rank)
	assert.True(t, p.BackupRequired)
	assert.Equal(t, 1972, p.Info.CreationTimeDate.Year())
	assert.Equal(t, [2]int{1523, 2267}, p.FileList[0].Resolution)
	assert.Equal(t, "DONE", string(p.BackupList[0].Status))
}

func TestRecentlyUpdated(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`[]`))
	}))

	_, err := client.RecentlyUpdated(context.Background(), 30*time.Second)
	require.NoError(t, err)
	_, err = client.RecentlyUpdated(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, []string{"/picture/updated/30", "/picture/updated/1"}, paths)
}

func TestGzipResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(pictureJSON))
		gz.Close()
	}))

	p, err := client.GetPicture(context.Background(), "aaaa")
	require.NoError(t, err)
	assert.Equal(t, "aaaa", p.Hash)
}

func TestGetPicture_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`"NOT FOUND"`))
	}))

	_, err := client.GetPicture(context.Background(), "zzzz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "NOT FOUND")
}

func TestServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.ListPictures(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestInvalidJSON(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))

	_, err := client.ListDateRanges(context.Background())
	assert.Error(t, err)
}

func TestPictureExists(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/picture/exists/aaaa" {
			w.Write([]byte(`"OK"`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	ok, err := client.PictureExists(context.Background(), "aaaa")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.PictureExists(context.Background(), "bbbb")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListBackups(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/backup/plan/aaaa", r.URL.Path)
		w.Write([]byte(`[{"crawler_id": "laptop", "storage_id": "s3", "status": "ON_GOING"}]`))
	}))

	backups, err := client.ListBackups(context.Background(), "aaaa")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "s3", backups[0].StorageID)
}

func TestSetAndPlanBackup(t *testing.T) {
	for _, required := range []bool{true, false} {
		var mu sync.Mutex
		var calls []string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls = append(calls, r.Method+" "+r.URL.Path)
			mu.Unlock()

			if r.Method == http.MethodGet {
				w.Write([]byte(pictureJSON))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`"/picture/aaaa"`))
		}))

		p, err := client.SetAndPlanBackup(context.Background(), "aaaa", required)
		require.NoError(t, err)
		assert.Equal(t, "aaaa", p.Hash)

		setMethod := http.MethodDelete
		if required {
			setMethod = http.MethodPost
		}
		assert.Equal(t, []string{
			setMethod + " /backup/request/aaaa",
			"PUT /backup/plan/aaaa",
			"GET /picture/aaaa",
		}, calls)
	}
}

func TestSetAndPlanBackup_StopsOnError(t *testing.T) {
	var mu sync.Mutex
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.SetAndPlanBackup(context.Background(), "aaaa", true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestContextCancel(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Ping(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
