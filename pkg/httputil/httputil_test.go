package httputil_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maskwallet/walletd/pkg/httputil"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func TestClient(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			switch r.URL.Path {
			case "/echo":
				if r.Method == http.MethodPost {
					var p payload
					json.NewDecoder(r.Body).Decode(&p)
					json.NewEncoder(w).Encode(p)
					return
				}
				json.NewEncoder(w).Encode(payload{r.URL.Query().Get("v")})
			case "/missing":
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("not found"))
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		},
	))
	defer srv.Close()

	ctx := context.Background()

	t.Run("get with cache", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		client, err := httputil.NewClient("test", srv.URL+"/", httputil.Opts{
			CacheTTL: time.Minute,
		})
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			var out payload
			err := client.Get(ctx, "/echo", url.Values{"v": {"hello"}}, &out)
			require.NoError(t, err)
			require.Equal(t, "hello", out.Value)
		}
		require.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("get without cache", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		client, err := httputil.NewClient("test", srv.URL, httputil.Opts{})
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			var out payload
			err := client.Get(ctx, "echo", url.Values{"v": {"hi"}}, &out)
			require.NoError(t, err)
		}
		require.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})

	t.Run("post", func(t *testing.T) {
		client, err := httputil.NewClient("test", srv.URL, httputil.Opts{})
		require.NoError(t, err)

		var out payload
		err = client.Post(ctx, "/echo", payload{"ping"}, &out)
		require.NoError(t, err)
		require.Equal(t, "ping", out.Value)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := httputil.NewClient("test", "not a url", httputil.Opts{})
		require.Error(t, err)

		client, err := httputil.NewClient("test", srv.URL, httputil.Opts{})
		require.NoError(t, err)

		err = client.Get(ctx, "/missing", nil, nil)
		var statusErr *httputil.StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusNotFound, statusErr.Code)
		require.Equal(t, "not found", statusErr.Body)

		err = client.Get(ctx, "/broken", nil, nil)
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusInternalServerError, statusErr.Code)
	})
}
