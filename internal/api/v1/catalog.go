package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/service"
)

type CatalogHandler struct {
	catalogService service.CatalogSetupService
	log            *logger.Logger
}

func NewCatalogHandler(catalogService service.CatalogSetupService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		log:            log,
	}
}

// @Summary Validate a catalog setup
// @Description Checks a declarative catalog definition for duplicate slugs and dangling references before it is applied.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param catalog body service.CatalogSetupInput true "Catalog definition"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ierr.ErrorResponse
// @Router /catalog/validate [post]
func (h *CatalogHandler) ValidateCatalog(c *gin.Context) {
	var input service.CatalogSetupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.catalogService.Validate(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}
