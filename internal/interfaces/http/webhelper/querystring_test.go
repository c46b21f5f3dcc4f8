package webhelper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func TestModifyQueryString(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		key    string
		values []string
		want   string
	}{
		{name: "empty url", url: "", key: "a", values: []string{"1"}, want: ""},
		{name: "empty key", url: "http://shop.local/c?x=1", key: "", want: "http://shop.local/c?x=1"},
		{name: "adds parameter", url: "http://shop.local/c?x=1", key: "page", values: []string{"2"}, want: "http://shop.local/c?page=2&x=1"},
		{name: "replaces parameter", url: "http://shop.local/c?page=1&x=1", key: "page", values: []string{"5"}, want: "http://shop.local/c?page=5&x=1"},
		{name: "replaces key ignoring case", url: "http://www.example.com/catalog?Page=1&orderby=5", key: "page", values: []string{"2"},
			want: "http://www.example.com/catalog?orderby=5&page=2"},
		{name: "replaces every casing", url: "http://shop.local/c?PAGE=1&page=3&Page=4", key: "Page", values: []string{"2"}, want: "http://shop.local/c?Page=2"},
		{name: "joins values", url: "http://shop.local/c", key: "ids", values: []string{"1", "2"}, want: "http://shop.local/c?ids=1%2C2"},
		{name: "keeps fragment", url: "http://shop.local/c?x=1#reviews", key: "y", values: []string{"2"}, want: "http://shop.local/c?x=1&y=2#reviews"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModifyQueryString(tt.url, tt.key, tt.values...))
		})
	}
}

func TestRemoveQueryString(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		key   string
		value string
		want  string
	}{
		{name: "empty url", url: "", key: "a", want: ""},
		{name: "empty key", url: "http://shop.local/?a=1", key: "", want: "http://shop.local/?a=1"},
		{name: "removes key ignoring case", url: "http://shop.local/?Page=1&x=2", key: "page", want: "http://shop.local/?x=2"},
		{name: "removes only matching value", url: "http://shop.local/?spec=Red&spec=blue&x=1", key: "SPEC", value: "red", want: "http://shop.local/?spec=blue&x=1"},
		{name: "last value removes key", url: "http://shop.local/?spec=red", key: "spec", value: "RED", want: "http://shop.local/"},
		{name: "keeps fragment", url: "http://shop.local/p?a=1&b=2#top", key: "a", want: "http://shop.local/p?b=2#top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveQueryString(tt.url, tt.key, tt.value))
		})
	}
}

func TestPageURL(t *testing.T) {
	w := newHelper(t, config.HostingConfig{})

	tests := []struct {
		name   string
		target string
		page   int
		want   string
	}{
		{name: "next page", target: "/points?page_index=1&page_size=10", page: 2, want: "http://example.com/points?page_index=2&page_size=10"},
		{name: "adds page index", target: "/points?store_id=x", page: 1, want: "http://example.com/points?page_index=1&store_id=x"},
		{name: "first page drops index", target: "/points?page_index=1&page_size=10", page: 0, want: "http://example.com/points?page_size=10"},
		{name: "first page without index", target: "/points", page: 0, want: "http://example.com/points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodGet, tt.target)
			got, err := w.PageURL(c, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrackPost(t *testing.T) {
	w := newHelper(t, config.HostingConfig{})
	r := gin.New()
	r.Use(w.TrackPost())
	r.Any("/", func(c *gin.Context) {
		c.String(http.StatusOK, "%t", w.IsPostBeingDone(c))
	})

	for method, want := range map[string]string{http.MethodPost: "true", http.MethodGet: "false"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
		assert.Equal(t, want, rec.Body.String(), method)
	}
}
