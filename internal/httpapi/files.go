package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/storage"
)

// uploadFile is the local upload endpoint: multipart "file" plus an optional
// "prefix", answered with a storage.UploadResult.
func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	fail := func(err error) {
		status := statusOf(err)
		if status == http.StatusBadGateway {
			// the disk is this server's own storage
			status = http.StatusInternalServerError
		}
		if status == http.StatusInternalServerError {
			s.logger.Error(r.Context(), "local upload failed", "error", err)
		}
		s.writeJSON(w, r, status, storage.UploadResult{Success: false, Error: err.Error()})
	}

	if err := s.parseMultipart(w, r); err != nil {
		fail(err)
		return
	}
	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		fail(fmt.Errorf("%w: no file", common.ErrValidation))
		return
	}
	asset, err := readAsset(fhs[0])
	if err != nil {
		fail(err)
		return
	}

	url, err := s.deps.Disk.Save(asset, r.FormValue("prefix"))
	if err != nil {
		fail(err)
		return
	}
	s.logger.Info(r.Context(), "file stored", "url", url, "bytes", len(asset.Data))
	s.writeJSON(w, r, http.StatusOK, storage.UploadResult{Success: true, URL: url})
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	var req storage.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, r, fmt.Errorf("%w: body must be {\"url\": string}", common.ErrValidation))
		return
	}
	if err := s.deps.Disk.Remove(req.URL); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "file removed", "url", req.URL)
	s.writeJSON(w, r, http.StatusOK, ack{Success: true})
}
