package api

import (
	"context"
	"net/http"

	"github.com/circleci/ex/httpserver/ginrouter"
	"github.com/gin-gonic/gin"

	"newsapi/news"
)

// Store is the persistence surface the API needs. *news.Store implements it.
type Store interface {
	List(ctx context.Context) ([]news.Item, error)
	Create(ctx context.Context, toAdd news.ToAdd) (*news.Item, error)
	Update(ctx context.Context, id int64, patch news.Patch) (*news.Item, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type API struct {
	router *gin.Engine
	store  Store
}

type Options struct {
	Store Store
}

func New(ctx context.Context, opts Options) *API {
	r := ginrouter.Default(ctx, "api")
	a := &API{
		router: r,
		store:  opts.Store,
	}

	r.GET("/", a.getIndex)
	r.GET("/db-health", a.getDBHealth)
	r.GET("/news", a.handle(a.listNews))
	r.POST("/news", a.handle(a.createNews))
	r.PUT("/news/:id", a.handle(a.updateNews))
	r.DELETE("/news/:id", a.handle(a.deleteNews))

	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}

// getIndex works with or without a reachable database.
func (a *API) getIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the News API (with Postgres)!",
		"endpoints": gin.H{
			"list_all_news": "GET /news",
			"create_news":   "POST /news",
			"update_news":   "PUT /news/<id>",
			"delete_news":   "DELETE /news/<id>",
			"db_health":     "GET /db-health",
		},
	})
}

// getDBHealth has its own response shape, distinct from the error envelope.
func (a *API) getDBHealth(c *gin.Context) {
	err := a.store.Ping(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Database connection failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Database connection successful",
	})
}
