package routes

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"yochan/failures"
	"yochan/media"
	"yochan/models"
	"yochan/transform"
)

const (
	msgNoFile = "No file uploaded."

	// multipartMemory is how much of a multipart body is kept in memory
	// before spilling file parts to disk.
	multipartMemory = 32 << 20
)

// UploadHandler stores one image sent as the multipart field "file".
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	plan, purpose, err := parseUploadQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	headers, err := s.parseFiles(w, r, "file", 1)
	if err != nil {
		respondError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, err := s.readFile(headers[0])
	if err != nil {
		respondError(w, err)
		return
	}

	art, err := s.media.Upload(r.Context(), file, plan, purpose, s.baseURL(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, art.URL)
}

// UploadMultipleHandler stores every image sent as the multipart field
// "files". Each file succeeds or fails on its own; the request only fails
// when all of them do.
func (s *Server) UploadMultipleHandler(w http.ResponseWriter, r *http.Request) {
	plan, purpose, err := parseUploadQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	headers, err := s.parseFiles(w, r, "files", maxBatchFiles)
	if err != nil {
		respondError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	if len(headers) > maxBatchFiles {
		respondError(w, failures.Validationf("At most %d files can be uploaded at once.", maxBatchFiles))
		return
	}

	files := make([]media.File, 0, len(headers))
	for _, h := range headers {
		f, err := s.readFile(h)
		if err != nil {
			respondError(w, err)
			return
		}
		files = append(files, f)
	}

	results, err := s.media.UploadBatch(r.Context(), files, plan, purpose, s.baseURL(r))
	if err != nil {
		respondError(w, err)
		return
	}

	items := make([]models.BatchItem, 0, len(results))
	for _, res := range results {
		item := models.BatchItem{File: res.File, Success: res.Err == nil}
		if res.Err != nil {
			item.Error = &models.ErrorBody{Message: failures.Message(res.Err)}
		} else {
			item.Result = res.Artifact.URL
		}
		items = append(items, item)
	}
	respondOK(w, items)
}

func parseUploadQuery(r *http.Request) (transform.Plan, string, error) {
	q := r.URL.Query()
	purpose, err := transform.ValidatePurpose(q)
	if err != nil {
		return transform.Plan{}, "", err
	}
	plan, err := transform.Validate(q)
	if err != nil {
		return transform.Plan{}, "", err
	}
	return plan, purpose, nil
}

// parseFiles reads the multipart body and returns the parts under field.
func (s *Server) parseFiles(w http.ResponseWriter, r *http.Request, field string, maxFiles int) ([]*multipart.FileHeader, error) {
	// Room for the multipart framing around maxFiles full-size files.
	limit := s.cfg.MaxUploadBytes*int64(maxFiles) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, s.badFile()
		}
		return nil, failures.Validation(msgNoFile)
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		r.MultipartForm.RemoveAll()
		return nil, failures.Validation(msgNoFile)
	}
	return headers, nil
}

// readFile loads one part, enforcing the size cap and an image type.
func (s *Server) readFile(h *multipart.FileHeader) (media.File, error) {
	if h.Size > s.cfg.MaxUploadBytes {
		return media.File{}, s.badFile()
	}

	f, err := h.Open()
	if err != nil {
		return media.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return media.File{}, err
	}
	if len(data) == 0 {
		return media.File{}, failures.Validation(msgNoFile)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes || !isImage(h, data) {
		return media.File{}, s.badFile()
	}
	return media.File{Name: h.Filename, Data: data}, nil
}

// isImage accepts a part declared as image/* or whose content sniffs as one.
func isImage(h *multipart.FileHeader, data []byte) bool {
	if strings.HasPrefix(h.Header.Get("Content-Type"), "image/") {
		return true
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

func (s *Server) badFile() error {
	return failures.Validationf("`file` must be an image, with a maximum size of %d MB.", s.cfg.MaxUploadBytes>>20)
}
