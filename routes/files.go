package routes

import (
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"yochan/logger"
	"yochan/storage"
)

// FileHandler serves a stored artifact by its key below /uploads/.
func (s *Server) FileHandler(w http.ResponseWriter, r *http.Request) {
	key, err := storage.CleanKey(chi.URLParam(r, "*"))
	if err != nil {
		respondError(w, err)
		return
	}

	obj, err := s.media.Backend().Open(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}

	if rs, ok := obj.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, path.Base(key), obj.ModTime, rs)
		return
	}

	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		logger.Debugf("Failed to stream %s: %v", key, err)
	}
}
