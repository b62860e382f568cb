package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
	domainpricing "lendly/internal/domain/pricing"
	domainrange "lendly/internal/domain/shared/daterange"
	domainuser "lendly/internal/domain/user"
	infradb "lendly/internal/infra/db/mongo"
	inframem "lendly/internal/infra/storage/memory"
)

// respondError maps domain failures onto the HTTP taxonomy. Unknown errors
// become opaque 500s so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domaincatalog.ErrItemNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrNotAllowed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, domainbooking.ErrNotApproved),
		errors.Is(err, domainbooking.ErrAlreadyPaid),
		errors.Is(err, domainbooking.ErrNotPaid),
		errors.Is(err, domainbooking.ErrRefundExceedsTotal),
		errors.Is(err, domainbooking.ErrUnknownStatus),
		errors.Is(err, domainbooking.ErrStartInPast),
		errors.Is(err, domaincatalog.ErrNotAvailable),
		errors.Is(err, domaincatalog.ErrTitleRequired),
		errors.Is(err, domaincatalog.ErrDailyRate),
		errors.Is(err, domaincatalog.ErrNegativeRate),
		errors.Is(err, domainpricing.ErrZeroDays),
		errors.Is(err, domainpricing.ErrDailyRequired),
		errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domaincatalog.ErrDateConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, infradb.ErrConcurrentUpdate),
		errors.Is(err, inframem.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
