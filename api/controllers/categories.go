package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/internal/categories"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

type categoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// CategoriesList returns the flat category list. The endpoint is public.
func CategoriesList(repo categoryLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories.FromModels(rows)})
	}
}
