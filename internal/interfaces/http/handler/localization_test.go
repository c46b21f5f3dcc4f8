package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLocalizationHandler_GetResource(t *testing.T) {
	resources := new(MockResourceReader)
	resources.On("GetResource", mock.Anything, "Plugins.Pickup.PickupInStore.Fields.Name").Return("Name")
	resources.On("GetResource", mock.Anything, "Unknown.Resource").Return("Unknown.Resource")

	work := new(MockWorkContext)
	work.On("WorkingLanguage", mock.Anything).Return(language.AmericanEnglish)

	api := newTestAPI(t, NewLocalizationHandler(resources, work).Routes())

	w := api.do(t, http.MethodGet, "/api/v1/resources/Plugins.Pickup.PickupInStore.Fields.Name", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ResourceResponse
	dataOf(t, w, &resp)
	assert.Equal(t, "Name", resp.Value)
	assert.Equal(t, "en-US", resp.Language)

	w = api.do(t, http.MethodGet, "/api/v1/resources/Unknown.Resource", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	dataOf(t, w, &resp)
	assert.Equal(t, "Unknown.Resource", resp.Value)
}
