package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
	"github.com/vadim/reddit-insight/internal/metrics"
)

// newAPIServer starts a mock API and returns a session bound to it
func newAPIServer(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Session, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	client := New(opts...)

	return &Session{client: client, token: "tok", userAgent: "insight-test/1.0", credentialID: "client-id"}, srv
}

func writeListing(w http.ResponseWriter, after string, children []map[string]any) {
	data := map[string]any{"children": children, "after": nil}
	if after != "" {
		data["after"] = after
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"kind": "Listing", "data": data})
}

func commentChildren(page, n int) []map[string]any {
	children := make([]map[string]any, 0, n)
	for i := range n {
		children = append(children, map[string]any{
			"kind": "t1",
			"data": map[string]any{
				"id":              fmt.Sprintf("c%d_%d", page, i),
				"name":            fmt.Sprintf("t1_c%d_%d", page, i),
				"author":          "spez",
				"author_fullname": "t2_spez",
				"subreddit":       "golang",
				"created_utc":     1700000000.0,
				"score":           i,
				"body":            "hello",
				"link_id":         "t3_post",
			},
		})
	}
	return children
}

func TestClientFetchAll(t *testing.T) {
	t.Run("walks pages until the cursor is null", func(t *testing.T) {
		const fullPages = 3
		var calls atomic.Int32

		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			n := int(calls.Add(1))
			q := r.URL.Query()

			assert.Equal(t, "/user/spez/comments", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "insight-test/1.0", r.UserAgent())
			assert.Equal(t, "100", q.Get("limit"))
			assert.Equal(t, "new", q.Get("sort"))

			if n == 1 {
				assert.Empty(t, q.Get("after"))
				assert.Empty(t, q.Get("count"))
			} else {
				assert.Equal(t, fmt.Sprintf("cursor%d", n-1), q.Get("after"))
				assert.Equal(t, fmt.Sprintf("%d", (n-1)*100), q.Get("count"))
			}

			if n <= fullPages {
				writeListing(w, fmt.Sprintf("cursor%d", n), commentChildren(n, 100))
				return
			}
			writeListing(w, "", nil)
		})

		items, err := sess.FetchAll(context.Background(), "spez", entity.KindComment, entity.SortNew)
		require.NoError(t, err)
		assert.Len(t, items, fullPages*100)
		assert.Equal(t, int32(fullPages+1), calls.Load())

		first := items[0]
		assert.Equal(t, entity.KindComment, first.Kind)
		assert.Equal(t, "t2_spez", first.AuthorID)
		assert.Equal(t, "t1_c1_0", first.ItemID)
		assert.Equal(t, "post", first.ParentPostID)
		assert.Equal(t, "hello", first.Text)
		assert.Equal(t, int64(1700000000), first.CreatedAt.Unix())
		assert.Equal(t, "t1_c3_99", items[len(items)-1].ItemID)
	})

	t.Run("empty first page", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeListing(w, "", nil)
		})

		items, err := sess.FetchAll(context.Background(), "spez", entity.KindPost, entity.SortTop)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("fails instead of following an endless cursor", func(t *testing.T) {
		var calls atomic.Int32
		reg := prometheus.NewRegistry()

		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			n := int(calls.Add(1))
			writeListing(w, fmt.Sprintf("cursor%d", n), commentChildren(n, 1))
		}, WithMaxPages(5), WithMetrics(metrics.New(reg)))

		_, err := sess.FetchAll(context.Background(), "spez", entity.KindComment, entity.SortControversial)
		assert.ErrorIs(t, err, entity.ErrPaginationLimitExceeded)
		assert.Equal(t, int32(5), calls.Load())
	})

	t.Run("top and controversial ask for all time", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "all", r.URL.Query().Get("t"))
			writeListing(w, "", nil)
		})

		_, err := sess.FetchAll(context.Background(), "spez", entity.KindPost, entity.SortControversial)
		require.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := sess.FetchAll(context.Background(), "ghost", entity.KindPost, entity.SortNew)
		assert.ErrorIs(t, err, entity.ErrUserNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"Bad Gateway","error":502}`))
		})

		_, err := sess.FetchAll(context.Background(), "spez", entity.KindPost, entity.SortNew)
		assert.ErrorIs(t, err, entity.ErrUpstream)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	})
}

func TestClientProfile(t *testing.T) {
	t.Run("decodes the profile", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user/spez/about", r.URL.Path)
			_, _ = w.Write([]byte(`{"kind":"t2","data":{"name":"spez","created_utc":1118030400.0,"link_karma":1234,"comment_karma":5678}}`))
		})

		p, err := sess.Profile(context.Background(), "spez")
		require.NoError(t, err)
		assert.Equal(t, "spez", p.Name)
		assert.Equal(t, int64(1234), p.LinkKarma)
		assert.Equal(t, int64(5678), p.CommentKarma)
		assert.Equal(t, int64(1118030400), p.CreatedAt.Unix())
	})

	t.Run("not found", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found","error":404}`))
		})

		_, err := sess.Profile(context.Background(), "ghost")
		assert.ErrorIs(t, err, entity.ErrUserNotFound)
	})

	t.Run("no data", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"kind":"t2"}`))
		})

		_, err := sess.Profile(context.Background(), "ghost")
		assert.ErrorIs(t, err, entity.ErrUserNotFound)
	})
}

func TestClientCountRecent(t *testing.T) {
	t.Run("counts the first page", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			writeListing(w, "cursor", commentChildren(1, 3))
		})

		n, err := sess.CountRecent(context.Background(), "spez", entity.KindComment, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("hidden listing counts as empty", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		n, err := sess.CountRecent(context.Background(), "spez", entity.KindPost, 3)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("server errors are reported", func(t *testing.T) {
		sess, _ := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := sess.CountRecent(context.Background(), "spez", entity.KindPost, 3)
		assert.ErrorIs(t, err, entity.ErrUpstream)
	})
}

func TestConnectorConnect(t *testing.T) {
	tokenSrv := newTokenServer(t, http.StatusOK, `{"access_token":"fresh","token_type":"bearer"}`)

	var seen atomic.Value
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		writeListing(w, "", nil)
	}))
	t.Cleanup(apiSrv.Close)

	rotator, err := NewRotator([]string{testCreds.ID}, []string{testCreds.Secret}, []string{testCreds.UserAgent})
	require.NoError(t, err)

	conn := NewConnector(
		rotator,
		NewAuthenticator(WithTokenURL(tokenSrv.URL), WithAuthHTTPClient(tokenSrv.Client())),
		New(WithBaseURL(apiSrv.URL), WithHTTPClient(apiSrv.Client())),
	)

	sess, err := conn.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testCreds.ID, sess.CredentialID())

	_, err = sess.FetchAll(context.Background(), "spez", entity.KindPost, entity.SortNew)
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", seen.Load())
}

func TestClientPacing(t *testing.T) {
	c := New(WithRequestsPerMinute(60))
	assert.NotNil(t, c.limiter("a"))
	assert.Same(t, c.limiter("a"), c.limiter("a"))
	assert.NotSame(t, c.limiter("a"), c.limiter("b"))

	assert.Nil(t, New().limiter("a"))
}
