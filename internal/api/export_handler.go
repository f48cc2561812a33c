package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/svgagenius/svga-agent/internal/animation"
	"github.com/svgagenius/svga-agent/internal/export"
	"github.com/svgagenius/svga-agent/internal/guard"
	"github.com/svgagenius/svga-agent/internal/ledger"
)

const multipartMemoryLimit = 32 << 20

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Kind comes from the form, resolved after the size-limited parse.
		runExport(cfg, w, r, "")
	}
}

func exportAssetsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runExport(cfg, w, r, export.KindAssets)
	}
}

func runExport(cfg ServerConfig, w http.ResponseWriter, r *http.Request, kind export.Kind) {
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
		return
	}

	if kind == "" {
		kind = export.Kind(r.FormValue("kind"))
		if kind == "" {
			kind = export.KindFrames
		}
	}

	file, header, err := r.FormFile("animation")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "animation file is required", "BAD_REQUEST")
		return
	}
	defer file.Close()

	userID := r.FormValue("user_id")
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

	anim, err := animation.DecodeGIF(file)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "animation could not be decoded", "DECODE_FAILED")
		return
	}
	defer anim.Close()

	name := r.FormValue("name")
	if name == "" {
		base := path.Base(header.Filename)
		name = strings.TrimSuffix(base, path.Ext(base))
	}

	req := export.Request{
		Name:   name,
		Kind:   kind,
		Format: r.FormValue("format"),
		Width:  formInt(r, "width"),
		Height: formInt(r, "height"),
	}
	if req.Format == "" {
		req.Format = "png"
	}

	consumer := guard.Consumer{
		ID:        user.ID,
		Balance:   user.Diamonds,
		Admin:     user.Role == ledger.RoleAdmin,
		ManualVIP: user.ManualVIP,
	}
	pricing := guard.Pricing{UnitPrice: econ.ExportCost, VIPThreshold: econ.VIPThreshold}
	confirmed := r.FormValue("confirm") == "true"

	var artifact *export.Artifact
	outcome, err := cfg.Guard.Authorize(r.Context(), consumer, pricing, confirmed, func(ctx context.Context) error {
		a, exportErr := cfg.Exporter.Export(ctx, anim, req)
		artifact = a
		return exportErr
	})
	if err != nil {
		writeExportError(w, err)
		return
	}

	rec := &ledger.ExportRecord{
		ID:        ledger.NewID(),
		UserID:    user.ID,
		Kind:      string(kind),
		Format:    req.Format,
		Cost:      outcome.Charged,
		CreatedAt: time.Now().UTC(),
	}
	if logErr := cfg.Repository.LogExport(r.Context(), rec); logErr != nil {
		cfg.Logger.Error("failed to log export", "error", logErr, "user_id", user.ID)
	}

	// Keep a copy on disk so the artifact can be re-downloaded (with range
	// resume) after this response is gone.
	if cfg.Artifacts != nil {
		if stored, saveErr := cfg.Artifacts.Save(artifact.Name, artifact.Data); saveErr != nil {
			cfg.Logger.Error("failed to store artifact", "error", saveErr)
		} else {
			w.Header().Set("X-Artifact-Name", stored)
		}
	}

	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set("X-Export-Reason", string(outcome.Reason))
	w.Header().Set("X-Export-Charged", strconv.Itoa(outcome.Charged))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

func writeExportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, guard.ErrInsufficientBalance), errors.Is(err, ledger.ErrInsufficientFunds):
		WriteError(w, http.StatusPaymentRequired, "insufficient balance", "INSUFFICIENT_BALANCE")
	case errors.Is(err, guard.ErrConfirmationRequired):
		WriteError(w, http.StatusConflict, "export would charge diamonds, confirmation required", "CONFIRMATION_REQUIRED")
	case errors.Is(err, export.ErrBusy):
		WriteError(w, http.StatusConflict, "an export is already in progress", "BUSY")
	case errors.Is(err, animation.ErrSurfaceNotReady):
		WriteError(w, http.StatusUnprocessableEntity, "render surface not ready", "SURFACE_NOT_READY")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func formInt(r *http.Request, key string) int {
	v := r.FormValue(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
