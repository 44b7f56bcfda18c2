package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"newsapi/api/apierror"
	"newsapi/news"
)

func (a *API) listNews(c *gin.Context) error {
	type response struct {
		Count int         `json:"count"`
		Items []news.Item `json:"items"`
	}

	items, err := a.store.List(c.Request.Context())
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, response{Count: len(items), Items: items})
	return nil
}

func (a *API) createNews(c *gin.Context) error {
	payload, err := bindJSON(c)
	if err != nil {
		return err
	}

	title, ok := payload["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return apierror.New(http.StatusBadRequest, "Missing or invalid 'title' field")
	}

	toAdd := news.ToAdd{Title: strings.TrimSpace(title)}
	if content, ok := payload["content"].(string); ok {
		toAdd.Content = content
	}

	item, err := a.store.Create(c.Request.Context(), toAdd)
	if err != nil {
		return err
	}

	c.JSON(http.StatusCreated, item)
	return nil
}

func (a *API) updateNews(c *gin.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	payload, err := bindJSON(c)
	if err != nil {
		return err
	}

	// Unspecified fields retain their stored value.
	patch := news.Patch{}
	if title, ok := payload["title"].(string); ok {
		patch.Title = &title
	}
	if content, ok := payload["content"].(string); ok {
		patch.Content = &content
	}

	item, err := a.store.Update(c.Request.Context(), id, patch)
	if errors.Is(err, news.ErrNotFound) {
		return apierror.New(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, item)
	return nil
}

func (a *API) deleteNews(c *gin.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	err = a.store.Delete(c.Request.Context(), id)
	if errors.Is(err, news.ErrNotFound) {
		return apierror.New(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
	return nil
}

// itemID treats a non-integer id the same as an unknown one.
func itemID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apierror.New(http.StatusNotFound, "Item not found")
	}
	return id, nil
}

func bindJSON(c *gin.Context) (map[string]interface{}, error) {
	if c.ContentType() != "application/json" {
		return nil, apierror.New(http.StatusBadRequest, "Request must be JSON")
	}
	payload := map[string]interface{}{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, apierror.New(http.StatusBadRequest, "Request must be JSON")
	}
	return payload, nil
}
