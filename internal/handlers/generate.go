package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fa-metadata/fa40/internal/connector"
	"github.com/fa-metadata/fa40/internal/extract"
	"github.com/fa-metadata/fa40/internal/header"
	"github.com/fa-metadata/fa40/internal/metadata"
	"github.com/fa-metadata/fa40/internal/transform"
)

// Uploads above this size are rejected outright.
const maxUploadBytes = 64 * 1024 * 1024

// HandleGenerate accepts a multipart POST with a TIFF part named "file" and
// a connector JSON part named "connector", and responds with the generated
// FA 4.0 header plus its validation result.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	imagePath, imageName, ok := h.saveUpload(w, r, "file")
	if !ok {
		return
	}
	defer os.Remove(imagePath)

	connectorPath, _, ok := h.saveUpload(w, r, "connector")
	if !ok {
		return
	}
	defer os.Remove(connectorPath)

	conn, err := connector.Load(connectorPath)
	if err != nil {
		h.writeError(w, "Invalid connector: "+err.Error(), http.StatusBadRequest)
		return
	}

	raw, failures, err := h.extractor.Extract(imagePath)
	if err != nil {
		h.writeError(w, "Extraction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	// Extraction ran against the temp copy; restore the client's file name in
	// the file pseudo-tags.
	raw.Replace(metadata.TagRef{Source: metadata.SourceFile, Tag: metadata.TagFileName}, metadata.String(imageName))
	raw.Replace(metadata.TagRef{Source: metadata.SourceFile, Tag: metadata.TagFilePath}, metadata.String(imageName))

	doc := h.builder.Build(raw, conn, imageName)
	var known map[string][]string
	if h.schema != nil {
		known = h.schema.Fields()
	}
	result := header.Validate(doc, conn, known)

	h.writeJSON(w, map[string]any{
		"header":            doc,
		"validation":        result,
		"connector_matched": conn.Matches(raw),
		"backend_failures":  failures,
	})
}

// HandleTransforms lists the registered transform names, so connector
// authors can discover them without reading source.
func (h *Handler) HandleTransforms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, map[string]any{"transforms": transform.Names()})
}

// saveUpload stores one multipart file part in a temp file, keeping the
// original extension so the extractor's format sniffing still works.
func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request, part string) (path, name string, ok bool) {
	file, fh, err := r.FormFile(part)
	if err != nil {
		h.writeError(w, "Missing upload part \""+part+"\": "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusInternalServerError)
		return "", "", false
	}
	if len(data) >= maxUploadBytes {
		h.writeError(w, "Upload too large", http.StatusBadRequest)
		return "", "", false
	}
	if part == "file" && !extract.IsTIFF(fh.Filename) {
		h.writeError(w, "Only TIFF uploads are supported", http.StatusBadRequest)
		return "", "", false
	}

	tmp, err := os.CreateTemp("", "fa40-*"+filepath.Ext(fh.Filename))
	if err != nil {
		h.writeError(w, "Failed to store upload: "+err.Error(), http.StatusInternalServerError)
		return "", "", false
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		h.writeError(w, "Failed to store upload: "+err.Error(), http.StatusInternalServerError)
		return "", "", false
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		h.writeError(w, "Failed to store upload: "+err.Error(), http.StatusInternalServerError)
		return "", "", false
	}
	return tmp.Name(), fh.Filename, true
}
