package webhelper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// PageIndexParam is the query parameter list endpoints page with
const PageIndexParam = "page_index"

// PageURL returns the absolute URL of the current list at pageIndex. The
// first page drops the parameter instead of setting it to 0.
func (w *WebHelper) PageURL(c *gin.Context, pageIndex int) (string, error) {
	pageURL, err := w.GetThisPageURL(c, true, nil, false)
	if err != nil || pageURL == "" {
		return "", err
	}
	if pageIndex <= 0 {
		current := QueryString[string](c, PageIndexParam)
		if current == "" {
			return pageURL, nil
		}
		return RemoveQueryString(pageURL, PageIndexParam, current), nil
	}
	return ModifyQueryString(pageURL, PageIndexParam, strconv.Itoa(pageIndex)), nil
}

// ModifyQueryString sets key to the comma-joined values in rawURL, keeping
// the other parameters and the fragment. Keys compare case-insensitively, so
// an existing "Page" is replaced by "page". Parameters are emitted sorted by key.
func ModifyQueryString(rawURL, key string, values ...string) string {
	if rawURL == "" {
		return ""
	}
	if key == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := u.Query()
	for k := range query {
		if strings.EqualFold(k, key) {
			delete(query, k)
		}
	}
	query.Set(key, strings.Join(values, ","))
	u.RawQuery = query.Encode()
	return u.String()
}

// RemoveQueryString removes key from rawURL, comparing keys case-insensitively.
// When value is set only the pairs with that value (case-insensitive) go.
func RemoveQueryString(rawURL, key, value string) string {
	if rawURL == "" {
		return ""
	}
	if key == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := u.Query()
	for k, vals := range query {
		if !strings.EqualFold(k, key) {
			continue
		}
		if value == "" {
			delete(query, k)
			continue
		}
		kept := vals[:0]
		for _, v := range vals {
			if !strings.EqualFold(v, value) {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(query, k)
		} else {
			query[k] = kept
		}
	}
	u.RawQuery = query.Encode()
	return u.String()
}
