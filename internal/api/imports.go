package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/jensholdgaard/player-auction/internal/importer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Import reads the multipart "file" field into the preview.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respondError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	batch, err := h.imports.Import(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		respondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, importer.ErrDecode):
		respondError(w, http.StatusUnprocessableEntity, "could not read the uploaded file")
		return
	case err != nil:
		h.respondInternal(w, r, "import failed", err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// GetPreview returns the last successful import.
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.imports.Preview(r.Context())
	if !ok {
		respondError(w, http.StatusNotFound, "nothing imported yet")
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// DownloadTemplate serves the example workbook.
func (h *Handler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := importer.WriteTemplate(&buf); err != nil {
		h.respondInternal(w, r, "failed to build template", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+importer.TemplateFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
