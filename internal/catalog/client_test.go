package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowPlayingParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/now_playing", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "pt-BR", r.URL.Query().Get("language"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":2,"results":[
			{"id":603,"title":"Matrix","overview":"...","poster_path":"/m.jpg","vote_average":8.2,"release_date":"1999-03-31"},
			{"id":27205,"title":"Inception","overview":"...","poster_path":"/i.jpg","vote_average":8.4,"release_date":"2010-07-16"}
		],"total_pages":10,"total_results":200}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", "pt-BR", srv.Client())
	page, err := c.NowPlaying(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Results, 2)
	assert.Equal(t, uint64(603), page.Results[0].ID)
	assert.Equal(t, "Inception", page.Results[1].Title)
}

func TestMovieByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", "", srv.Client())
	_, err := c.MovieByID(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMovieByIDDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		w.Write([]byte(`{"id":603,"title":"Matrix","runtime":136,"genres":[{"id":28,"name":"Action"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", "", srv.Client())
	m, err := c.MovieByID(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, 136, m.Runtime)
	require.Len(t, m.Genres, 1)
	assert.Equal(t, "Action", m.Genres[0].Name)
}
