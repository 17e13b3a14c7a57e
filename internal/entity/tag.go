package entity

// ContentTypeProduct identifies products in tagged_items.
const ContentTypeProduct = "product"

type Tag struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

type TaggedItem struct {
	ID          int    `json:"id"`
	Tag         Tag    `json:"tag"`
	ContentType string `json:"content_type"`
	ObjectID    int    `json:"object_id"`
}
