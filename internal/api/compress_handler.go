package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"github.com/svgagenius/svga-agent/internal/compress"
)

func compressHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
			return
		}

		quality := 80
		if v := r.FormValue("quality"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "quality must be an integer", "BAD_REQUEST")
				return
			}
			quality = n
		}

		var headers []*multipart.FileHeader
		if r.MultipartForm != nil {
			headers = r.MultipartForm.File["images"]
		}
		if len(headers) == 0 {
			WriteError(w, http.StatusBadRequest, "at least one image is required", "BAD_REQUEST")
			return
		}

		images := make([]compress.SourceImage, 0, len(headers))
		for _, fh := range headers {
			data, err := readUpload(fh)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "failed to read uploaded image", "BAD_REQUEST")
				return
			}
			images = append(images, compress.SourceImage{Name: path.Base(fh.Filename), Data: data})
		}

		job, err := compress.NewJob(images, quality, nil, cfg.Logger)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		result, err := job.Run(r.Context())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			WriteError(w, http.StatusInternalServerError, "compression failed", "INTERNAL_ERROR")
			return
		}

		if cfg.Artifacts != nil {
			if stored, saveErr := cfg.Artifacts.Save("compressed_images.zip", result.Archive); saveErr != nil {
				cfg.Logger.Error("failed to store artifact", "error", saveErr)
			} else {
				w.Header().Set("X-Artifact-Name", stored)
			}
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="compressed_images.zip"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(result.Archive)))
		w.Header().Set("X-Compress-Saved-Bytes", strconv.FormatInt(result.SavedBytes, 10))
		w.Header().Set("X-Compress-Passthrough", strconv.Itoa(result.PassedThrough))
		w.WriteHeader(http.StatusOK)
		w.Write(result.Archive)
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
