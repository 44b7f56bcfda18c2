package news

import (
	"context"
	"errors"

	"github.com/circleci/ex/db"
	"github.com/circleci/ex/o11y"
)

func queryListItems(ctx context.Context, q db.Querier) (items []Item, err error) {
	ctx, span := db.Span(ctx, "news", "query_list_items")
	defer o11y.End(span, &err)

	items = []Item{}
	err = q.SelectContext(ctx, &items, listItemsSQL)
	if errors.Is(err, db.ErrNop) {
		// An empty table is a valid listing.
		return items, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// language=PostgreSQL
var listItemsSQL = `
SELECT
	id,
	title,
	content
FROM
	news
ORDER BY
	id
;`

func queryGetItemByID(ctx context.Context, q db.Querier, id int64) (item *Item, err error) {
	ctx, span := db.Span(ctx, "news", "query_get_item_by_id")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	item = &Item{}
	err = q.GetContext(ctx, item, getItemByIDSQL, id)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// language=PostgreSQL
var getItemByIDSQL = `
SELECT
	id,
	title,
	content
FROM
	news
WHERE
	id = $1
LIMIT 1
;`

func queryInsertItem(ctx context.Context, q db.Querier, toAdd ToAdd) (item *Item, err error) {
	ctx, span := db.Span(ctx, "news", "query_insert_item")
	defer o11y.End(span, &err)

	var id int64
	err = q.GetContext(ctx, &id, insertItemSQL,
		toAdd.Title,
		toAdd.Content,
	)
	if err != nil {
		return nil, err
	}
	return &Item{ID: id, Title: toAdd.Title, Content: toAdd.Content}, nil
}

// language=PostgreSQL
var insertItemSQL = `
INSERT INTO news (
	title,
	content
)
VALUES (
	$1,
	$2
)
RETURNING
	id
;`

func queryUpdateItem(ctx context.Context, q db.Querier, item Item) (err error) {
	ctx, span := db.Span(ctx, "news", "query_update_item")
	defer o11y.End(span, &err)
	span.AddField("id", item.ID)

	_, err = q.ExecContext(ctx, updateItemSQL,
		item.ID,
		item.Title,
		item.Content,
	)
	return err
}

// language=PostgreSQL
var updateItemSQL = `
UPDATE
	news
SET
	title = $2,
	content = $3
WHERE
	id = $1
;`

func queryDeleteItem(ctx context.Context, q db.Querier, id int64) (err error) {
	ctx, span := db.Span(ctx, "news", "query_delete_item")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	var deleted int64
	return q.GetContext(ctx, &deleted, deleteItemSQL, id)
}

// language=PostgreSQL
var deleteItemSQL = `
DELETE FROM
	news
WHERE
	id = $1
RETURNING
	id
;`
