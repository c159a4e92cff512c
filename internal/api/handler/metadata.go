package handler

import (
	"net/http"

	"github.com/climatelens/climatelens/internal/api/models"
	"github.com/climatelens/climatelens/internal/api/response"
	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/forecast"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	catalog climate.Catalog
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(catalog climate.Catalog) *MetadataHandler {
	if catalog == nil {
		catalog = climate.DefaultCatalog()
	}
	return &MetadataHandler{catalog: catalog}
}

// ListParameters handles GET /v1/metadata/parameters.
func (h *MetadataHandler) ListParameters(w http.ResponseWriter, r *http.Request) {
	list := models.ParameterList{
		Items:       make([]models.Parameter, 0, len(h.catalog)),
		Resolutions: []string{string(climate.ResolutionDaily), string(climate.ResolutionMonthly)},
		Strategies:  []string{string(forecast.KindTrend), string(forecast.KindSmoothing)},
	}
	defaults := make(map[string]bool)
	for _, code := range h.catalog.DefaultParameters() {
		defaults[code] = true
	}
	for _, p := range h.catalog {
		list.Items = append(list.Items, models.Parameter{
			Code:    p.Code,
			Label:   p.Label,
			Unit:    p.Unit,
			Default: defaults[p.Code],
		})
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, list)
}
