package controllers

import (
	"net/http"

	"github.com/angelmondragon/backoffice/api/middleware"
	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/internal/overview"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

func Overview(svc overview.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Get(r.Context(), middleware.CompanyIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
