package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/codeharvest"
	"github.com/fwojciec/codeharvest/crawl"
	"github.com/fwojciec/codeharvest/fs"
	"github.com/fwojciec/codeharvest/goquery"
	harvesthttp "github.com/fwojciec/codeharvest/http"
	"github.com/fwojciec/codeharvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoExtractor returns the fetched HTML as the fragment text.
func echoExtractor() *mock.FragmentExtractor {
	return &mock.FragmentExtractor{
		ExtractFragmentFn: func(url, html string) (*codeharvest.Fragment, error) {
			return &codeharvest.Fragment{SourceURL: url, Text: html}, nil
		},
	}
}

// recordingWriter collects written paths and texts in order.
func recordingWriter(paths *[]string, texts map[string]string) *mock.FragmentWriter {
	return &mock.FragmentWriter{
		WriteFragmentFn: func(_ context.Context, path string, frag *codeharvest.Fragment) error {
			*paths = append(*paths, path)
			if texts != nil {
				texts[path] = frag.Text
			}
			return nil
		},
	}
}

func TestHarvester_HarvestTargets(t *testing.T) {
	t.Parallel()

	t.Run("processes targets sequentially in order", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = append(fetched, url)
				return "body of " + url, nil
			},
		}
		var paths []string
		texts := map[string]string{}

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), Writer: recordingWriter(&paths, texts)}
		result, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{
			{URL: "https://example.com/b.html", File: "b.cpp"},
			{URL: "https://example.com/a.html", File: "sub/a.cpp"},
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/b.html", "https://example.com/a.html"}, fetched)
		assert.Equal(t, []string{"b.cpp", "sub/a.cpp"}, paths)
		assert.Equal(t, "body of https://example.com/a.html", texts["sub/a.cpp"])
		assert.Equal(t, 2, result.Total)
		require.Len(t, result.Written, 2)
		assert.Empty(t, result.Failed)
		assert.Equal(t, len("body of https://example.com/b.html"), result.Written[0].Bytes)
		assert.Equal(t, crawl.ComputeHash("body of https://example.com/b.html"), result.Written[0].Hash)
	})

	t.Run("duplicate url is fetched once and written to the last file", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls++
				return "x", nil
			},
		}
		var paths []string

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), Writer: recordingWriter(&paths, nil)}
		_, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{
			{URL: "https://example.com/a.html", File: "first.cpp"},
			{URL: "https://example.com/a.html", File: "second.cpp"},
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, []string{"second.cpp"}, paths)
	})

	t.Run("skips failed fetch and continues", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == "https://example.com/bad.html" {
					return "", codeharvest.Errorf(codeharvest.EFETCH, "HTTP 404 for %s", url)
				}
				return "ok", nil
			},
		}
		var paths []string

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), Writer: recordingWriter(&paths, nil)}
		result, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{
			{URL: "https://example.com/bad.html", File: "bad.cpp"},
			{URL: "https://example.com/good.html", File: "good.cpp"},
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"good.cpp"}, paths)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "bad.cpp", result.Failed[0].Target.File)
		assert.Equal(t, codeharvest.EFETCH, codeharvest.ErrorCode(result.Failed[0]))
	})

	t.Run("skips parse and write failures", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) { return url, nil },
		}
		extractor := &mock.FragmentExtractor{
			ExtractFragmentFn: func(url, html string) (*codeharvest.Fragment, error) {
				if url == "https://example.com/noparse.html" {
					return nil, codeharvest.Errorf(codeharvest.EPARSE, "no code fragment found in %s", url)
				}
				return &codeharvest.Fragment{SourceURL: url, Text: html}, nil
			},
		}
		writer := &mock.FragmentWriter{
			WriteFragmentFn: func(_ context.Context, path string, _ *codeharvest.Fragment) error {
				if path == "locked.cpp" {
					return codeharvest.Errorf(codeharvest.EFILESYSTEM, "permission denied")
				}
				return nil
			},
		}

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: extractor, Writer: writer}
		result, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{
			{URL: "https://example.com/noparse.html", File: "noparse.cpp"},
			{URL: "https://example.com/locked.html", File: "locked.cpp"},
			{URL: "https://example.com/ok.html", File: "ok.cpp"},
		}, nil)

		require.NoError(t, err)
		require.Len(t, result.Written, 1)
		assert.Equal(t, "ok.cpp", result.Written[0].Path)
		require.Len(t, result.Failed, 2)
		assert.Equal(t, codeharvest.EPARSE, codeharvest.ErrorCode(result.Failed[0]))
		assert.Equal(t, codeharvest.EFILESYSTEM, codeharvest.ErrorCode(result.Failed[1]))
	})

	t.Run("invalid and out of scope targets are not fetched", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = append(fetched, url)
				return "", nil
			},
		}
		var paths []string

		h := &crawl.Harvester{
			Fetcher:       fetcher,
			Extractor:     echoExtractor(),
			Writer:        recordingWriter(&paths, nil),
			AllowedDomain: "help.example.com",
		}
		result, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{
			{URL: "https://help.example.com/nofile.html"},
			{URL: "https://elsewhere.com/x.html", File: "x.cpp"},
			{URL: "https://help.example.com/y.html", File: "y.cpp"},
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://help.example.com/y.html"}, fetched)
		assert.Equal(t, []string{"y.cpp"}, paths)
		require.Len(t, result.Failed, 2)
		assert.Equal(t, codeharvest.EINVALID, codeharvest.ErrorCode(result.Failed[0]))
		assert.Equal(t, codeharvest.EOUTOFSCOPE, codeharvest.ErrorCode(result.Failed[1]))
	})

	t.Run("fail fast stops at first failure", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls++
				return "", codeharvest.Errorf(codeharvest.EFETCH, "timeout")
			},
		}

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), FailFast: true}
		result, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{
			{URL: "https://example.com/a.html", File: "a.cpp"},
			{URL: "https://example.com/b.html", File: "b.cpp"},
		}, nil)

		require.Error(t, err)
		assert.Equal(t, codeharvest.EFETCH, codeharvest.ErrorCode(err))
		var targetErr *crawl.TargetError
		require.True(t, errors.As(err, &targetErr))
		assert.Equal(t, "a.cpp", targetErr.Target.File)
		assert.Equal(t, 1, calls)
		assert.Len(t, result.Failed, 1)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls++
				cancel()
				return "x", nil
			},
		}
		var paths []string

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), Writer: recordingWriter(&paths, nil)}
		result, err := h.HarvestTargets(ctx, []*codeharvest.Target{
			{URL: "https://example.com/a.html", File: "a.cpp"},
			{URL: "https://example.com/b.html", File: "b.cpp"},
		}, nil)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
		assert.Len(t, result.Written, 1)
	})

	t.Run("reports progress events", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == "https://example.com/b.html" {
					return "", codeharvest.Errorf(codeharvest.EFETCH, "boom")
				}
				return "", nil
			},
		}
		var paths []string
		var events []crawl.ProgressEvent

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), Writer: recordingWriter(&paths, nil)}
		_, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{
			{URL: "https://example.com/a.html", File: "a.cpp"},
			{URL: "https://example.com/b.html", File: "b.cpp"},
		}, func(e crawl.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, crawl.ProgressCompleted, events[1].Type)
		assert.Equal(t, "a.cpp", events[1].Path)
		assert.Equal(t, 1, events[1].Completed)
		assert.Equal(t, crawl.ProgressFailed, events[2].Type)
		assert.Error(t, events[2].Error)
		assert.Equal(t, crawl.ProgressFinished, events[3].Type)
	})
}

func TestHarvester_Harvest(t *testing.T) {
	t.Parallel()

	t.Run("loads targets from store", func(t *testing.T) {
		t.Parallel()

		store := &mock.TargetStore{
			LoadTargetsFn: func(context.Context) ([]*codeharvest.Target, error) {
				return []*codeharvest.Target{{URL: "https://example.com/a.html", File: "a.cpp"}}, nil
			},
		}
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) { return "x\n", nil },
		}
		var paths []string

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), Writer: recordingWriter(&paths, nil), Store: store}
		result, err := h.Harvest(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"a.cpp"}, paths)
		assert.Equal(t, 2, result.Bytes())
	})

	t.Run("returns load error", func(t *testing.T) {
		t.Parallel()

		store := &mock.TargetStore{
			LoadTargetsFn: func(context.Context) ([]*codeharvest.Target, error) {
				return nil, codeharvest.Errorf(codeharvest.ENOTFOUND, "targets file data.json not found")
			},
		}

		h := &crawl.Harvester{Store: store}
		_, err := h.Harvest(context.Background(), nil)

		assert.Equal(t, codeharvest.ENOTFOUND, codeharvest.ErrorCode(err))
	})

	t.Run("requires a store", func(t *testing.T) {
		t.Parallel()

		h := &crawl.Harvester{}
		result, err := h.Harvest(context.Background(), nil)

		assert.Nil(t, result)
		assert.Equal(t, codeharvest.EINVALID, codeharvest.ErrorCode(err))
	})

	t.Run("null entry in stored list does not reach the pipeline", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"url": "https://example.com/a.html", "file": "a.cpp"}, null]`), 0644))
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				t.Fatal("unexpected fetch")
				return "", nil
			},
		}

		h := &crawl.Harvester{Fetcher: fetcher, Store: fs.NewTargetStore(path)}
		_, err := h.Harvest(context.Background(), nil)

		assert.Equal(t, codeharvest.EPARSE, codeharvest.ErrorCode(err))
	})

	t.Run("nil targets are ignored", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) { return "x\n", nil },
		}
		var paths []string

		h := &crawl.Harvester{Fetcher: fetcher, Extractor: echoExtractor(), Writer: recordingWriter(&paths, nil)}
		result, err := h.HarvestTargets(context.Background(), []*codeharvest.Target{nil, {URL: "https://example.com/a.html", File: "a.cpp"}}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, []string{"a.cpp"}, paths)
	})
}

func TestDiscoverAndHarvest_RoundTrip(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/ref/examples.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="contents"><ul>
<li><a class="el" href="pg.html">out/example.cpp</a></li>
<li><a class="el" href="empty.html">out/nested/empty.cpp</a></li>
</ul></div></body></html>`)
	})
	mux.HandleFunc("/ref/pg.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="contents"><div class="fragment">`+
			`<div class="line">int main() {</div><div class="line">}</div>`+
			`</div></div></body></html>`)
	})
	mux.HandleFunc("/ref/empty.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="contents"><div class="fragment"></div></div></body></html>`)
	})

	dir := t.TempDir()
	baseURL := srv.URL + "/ref/"
	fetcher := harvesthttp.NewFetcher()
	store := fs.NewTargetStore(filepath.Join(dir, "data.json"))

	d := &crawl.Discoverer{
		Fetcher:       fetcher,
		Index:         goquery.NewIndexExtractor(baseURL),
		Store:         store,
		AllowedDomain: "127.0.0.1",
	}
	targets, err := d.Discover(context.Background(), baseURL+"examples.html")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, &codeharvest.Target{URL: baseURL + "pg.html", File: "out/example.cpp"}, targets[0])

	outDir := filepath.Join(dir, "out-root")
	h := &crawl.Harvester{
		Fetcher:       fetcher,
		Extractor:     goquery.NewFragmentExtractor(),
		Writer:        fs.NewWriter(outDir),
		Store:         store,
		AllowedDomain: "127.0.0.1",
	}
	result, err := h.Harvest(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Failed)
	assert.Len(t, result.Written, 2)

	content, err := os.ReadFile(filepath.Join(outDir, "out", "example.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "int main() {\n}\n", string(content))

	empty, err := os.ReadFile(filepath.Join(outDir, "out", "nested", "empty.cpp"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
