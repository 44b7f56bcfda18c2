package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsapi/api/apierror"
	"newsapi/news"
)

// handle adapts a handler returning an error into the uniform JSON error
// envelope. Validation and not-found errors keep their status; configuration
// and connection acquisition failures surface identically as a 500. Anything
// else is a database-layer failure, already rolled back by the store, and its
// message is exposed in the response.
func (a *API) handle(f func(c *gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := f(c)
		if err == nil {
			return
		}

		var apiErr *apierror.Error
		switch {
		case errors.As(err, &apiErr):
			c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
		case errors.Is(err, news.ErrConfig), errors.Is(err, news.ErrConnect):
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}
