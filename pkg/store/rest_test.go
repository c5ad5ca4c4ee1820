package store

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticTokens string

func (s staticTokens) AccessToken(context.Context) (string, error) {
	return string(s), nil
}

func TestRESTStore_InsertMessage(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewRESTStore(srv.URL+"/", "anon-key", staticTokens("user-token"), nil)
	require.NoError(t, s.InsertMessage(context.TODO(), "hello"))

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/rest/v1/void_messages", got.URL.Path)
	assert.Equal(t, "anon-key", got.Header.Get("apikey"))
	assert.Equal(t, "Bearer user-token", got.Header.Get("Authorization"))
	assert.Equal(t, "return=minimal", got.Header.Get("Prefer"))
	assert.JSONEq(t, `[{"content":"hello"}]`, string(body))
}

func TestRESTStore_CountVerified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.true", r.URL.Query().Get("verified"))
		assert.Equal(t, "0", r.URL.Query().Get("limit"))
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Range", "*/5")
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	s := NewRESTStore(srv.URL, "anon-key", nil, srv.Client())
	count, err := s.CountVerified(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRESTStore_FetchAtOffset(t *testing.T) {
	rows := `[{"content":"from the deep"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "content", q.Get("select"))
		assert.Equal(t, "eq.true", q.Get("verified"))
		assert.Equal(t, "1", q.Get("limit"))
		if q.Get("offset") == "3" {
			w.Write([]byte(rows))
			return
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	s := NewRESTStore(srv.URL, "anon-key", nil, nil)
	message, err := s.FetchAtOffset(context.TODO(), 3)
	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, "from the deep", message.Content)

	message, err = s.FetchAtOffset(context.TODO(), 4)
	assert.NoError(t, err)
	assert.Nil(t, message)
}

func TestRESTStore_BackendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"code": "PGRST301", "message": "Invalid API key"})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream gone"))
	}))
	defer srv.Close()

	s := NewRESTStore(srv.URL, "", nil, nil)
	err := s.InsertMessage(context.TODO(), "hello")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "PGRST301", apiErr.Code)
	assert.Equal(t, "Invalid API key", apiErr.Message)

	_, err = s.CountVerified(context.TODO())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream gone", apiErr.Message)
}

func TestRESTStore_MissingCountIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	_, err := NewRESTStore(srv.URL, "k", nil, nil).CountVerified(context.TODO())
	assert.Error(t, err)
}
