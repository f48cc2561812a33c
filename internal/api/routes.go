package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/svgagenius/svga-agent/internal/config"
	"github.com/svgagenius/svga-agent/internal/ledger"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/balance", balanceHandler(cfg))
		r.Get("/exports", listExportsHandler(cfg))
		r.Post("/export", exportHandler(cfg))
		r.Post("/export/assets", exportAssetsHandler(cfg))
		r.Post("/compress", compressHandler(cfg))
		r.Get("/artifacts", listArtifactsHandler(cfg))
		r.Get("/artifacts/{name}", downloadArtifactHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, StatusResponse{Export: cfg.Exporter.Status()})
	}
}

func balanceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			WriteError(w, http.StatusBadRequest, "user_id is required", "BAD_REQUEST")
			return
		}

		user, err := cfg.Repository.GetUser(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if user == nil {
			WriteError(w, http.StatusNotFound, "user not found", "NOT_FOUND")
			return
		}

		econ, err := cfg.Repository.GetEconomy(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		admin := user.Role == ledger.RoleAdmin
		WriteJSON(w, http.StatusOK, BalanceResponse{
			UserID:       user.ID,
			DisplayName:  user.DisplayName,
			Diamonds:     user.Diamonds,
			Admin:        admin,
			ManualVIP:    user.ManualVIP,
			VIP:          admin || user.ManualVIP || user.Diamonds >= econ.VIPThreshold,
			ExportCost:   econ.ExportCost,
			VIPThreshold: econ.VIPThreshold,
		})
	}
}

func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			WriteError(w, http.StatusBadRequest, "user_id is required", "BAD_REQUEST")
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		records, err := cfg.Repository.ListExports(r.Context(), userID, limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list exports", "INTERNAL_ERROR")
			return
		}

		resp := ExportsResponse{Exports: make([]ExportRecordResponse, len(records))}
		for i, rec := range records {
			resp.Exports[i] = ExportRecordResponse{
				ID:        rec.ID,
				Kind:      rec.Kind,
				Format:    rec.Format,
				Cost:      rec.Cost,
				CreatedAt: rec.CreatedAt.Format(time.RFC3339),
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listArtifactsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := cfg.Artifacts.List()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list artifacts", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, ArtifactsResponse{Artifacts: entries})
	}
}

func downloadArtifactHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := cfg.Artifacts.ServeFile(w, r, name); err != nil {
			cfg.Logger.Error("failed to serve artifact", "name", name, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to serve artifact", "INTERNAL_ERROR")
		}
	}
}
