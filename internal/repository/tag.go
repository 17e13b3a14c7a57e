package repository

import (
	"context"
	"database/sql"
	"storefront/internal/entity"
)

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db}
}

// GetTagsFor returns the tags attached to one object of the given content type.
func (r *TagRepository) GetTagsFor(ctx context.Context, contentType string, objectID int) ([]*entity.TaggedItem, error) {
	query := `
		SELECT ti.id, ti.content_type, ti.object_id, t.id, t.label
		FROM tagged_items ti
		JOIN tags t ON t.id = ti.tag_id
		WHERE ti.content_type = ? AND ti.object_id = ?
		ORDER BY t.label`
	rows, err := r.db.QueryContext(ctx, query, contentType, objectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*entity.TaggedItem{}
	for rows.Next() {
		var item entity.TaggedItem
		if err := rows.Scan(&item.ID, &item.ContentType, &item.ObjectID, &item.Tag.ID, &item.Tag.Label); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}
