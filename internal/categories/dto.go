package categories

import "github.com/angelmondragon/backoffice/pkg/db/models"

// CategoryDTO is the public category shape.
type CategoryDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// FromModels maps rows in their stored order.
func FromModels(rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryDTO{ID: row.ID, Name: row.Name, ParentID: row.ParentID})
	}
	return out
}
