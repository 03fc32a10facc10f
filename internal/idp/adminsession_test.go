package idp

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anhngo/fido-gateway/internal/cache/memory"
)

func TestAdminSession_LazySingleFetch(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "password", r.PostForm.Get("grant_type"))
		require.Equal(t, "admin", r.PostForm.Get("username"))
		_, _ = w.Write([]byte(`{"access_token":"admin-token"}`))
	})

	c, _ := newTestClient(t, mux)
	s := NewAdminSession(c, memory.New(time.Minute))

	tok, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "admin-token", tok)

	tok, err = s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "admin-token", tok)

	require.EqualValues(t, 1, atomic.LoadInt32(&hits), "el segundo Get sale del cache")
}

func TestAdminSession_ConcurrentGetsDeduplicated(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(20 * time.Millisecond) // fuerza solapamiento
		_, _ = w.Write([]byte(`{"access_token":"admin-token"}`))
	})

	c, _ := newTestClient(t, mux)
	s := NewAdminSession(c, memory.New(time.Minute))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := s.Get(context.Background())
			require.NoError(t, err)
			require.Equal(t, "admin-token", tok)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&hits), "singleflight deduplica la población")
}

func TestAdminSession_InvalidateForcesRefetch(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n == 1 {
			_, _ = w.Write([]byte(`{"access_token":"first"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"second"}`))
	})

	c, _ := newTestClient(t, mux)
	s := NewAdminSession(c, memory.New(time.Minute))

	tok, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", tok)

	s.Invalidate()

	tok, err = s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "second", tok)
	require.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestAdminSession_FailureLeavesSlotEmpty(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"recovered"}`))
	})

	c, _ := newTestClient(t, mux)
	s := NewAdminSession(c, memory.New(time.Minute))

	_, err := s.Get(context.Background())
	require.Error(t, err)
	ue, ok := IsUpstream(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, ue.Status)

	// El slot quedó vacío: el próximo Get vuelve al provider.
	tok, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "recovered", tok)
}

func TestAdminSession_Refresh(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})

	c, _ := newTestClient(t, mux)
	s := NewAdminSession(c, memory.New(time.Minute))

	_, err := s.Get(context.Background())
	require.NoError(t, err)

	_, err = s.Refresh(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&hits), "Refresh siempre recrea")
}
