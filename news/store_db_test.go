package news_test

import (
	"errors"
	"testing"

	"github.com/circleci/ex/testing/testcontext"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"newsapi/migrations"
	"newsapi/news"
)

func TestStore_roundTrip(t *testing.T) {
	ctx := testcontext.Background()
	fix := migrations.SetupDB(ctx, t)

	t.Setenv("DB_HOST", "localhost:5432")
	t.Setenv("DB_NAME", fix.DBName)
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASS", "password")

	store := news.NewStore()

	var created *news.Item
	assert.Assert(t, t.Run("Create", func(t *testing.T) {
		var err error
		created, err = store.Create(ctx, news.ToAdd{Title: "Hello"})
		assert.Assert(t, err)
		assert.Check(t, created.ID > 0)
		assert.Check(t, cmp.Equal(created.Title, "Hello"))
		assert.Check(t, cmp.Equal(created.Content, ""))
	}))

	t.Run("List includes the created item", func(t *testing.T) {
		items, err := store.List(ctx)
		assert.Assert(t, err)
		assert.Check(t, cmp.DeepEqual(items, []news.Item{*created}))
	})

	t.Run("Partial update preserves the title", func(t *testing.T) {
		content := "updated"
		item, err := store.Update(ctx, created.ID, news.Patch{Content: &content})
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(item.Title, "Hello"))
		assert.Check(t, cmp.Equal(item.Content, "updated"))
	})

	t.Run("Update of an unknown id", func(t *testing.T) {
		title := "nope"
		_, err := store.Update(ctx, created.ID+1000, news.Patch{Title: &title})
		assert.Check(t, errors.Is(err, news.ErrNotFound))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.Assert(t, store.Ping(ctx))
	})

	t.Run("Delete", func(t *testing.T) {
		assert.Assert(t, store.Delete(ctx, created.ID))

		err := store.Delete(ctx, created.ID)
		assert.Check(t, errors.Is(err, news.ErrNotFound))

		items, err := store.List(ctx)
		assert.Assert(t, err)
		assert.Check(t, cmp.Len(items, 0))
	})
}
