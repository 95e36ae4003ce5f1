// Package media ties validation, transformation and storage together for
// uploads, deletions and listings.
package media

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"yochan/encoder"
	"yochan/failures"
	"yochan/journal"
	"yochan/logger"
	"yochan/metrics"
	"yochan/models"
	"yochan/storage"
	"yochan/transform"
)

const msgNoFile = "No file uploaded."

// DefaultBatchConcurrency bounds parallel transforms in one batch request
// when Options leaves it unset.
const DefaultBatchConcurrency = 4

// File is one uploaded file body.
type File struct {
	Name string
	Data []byte
}

// Artifact is a stored upload.
type Artifact struct {
	Key     string
	URL     string
	Purpose string
	Format  string
	Size    int64
	Width   int
	Height  int
}

// BatchResult is the outcome for one file of a batch, in input order.
type BatchResult struct {
	File     string
	Artifact *Artifact
	Err      error
}

// Options configures optional collaborators of a Service.
type Options struct {
	Journal          *journal.Store
	Metrics          *metrics.Recorder
	BatchConcurrency int
}

// Service runs the upload, delete and list operations against one backend.
type Service struct {
	backend     storage.Backend
	pipeline    *transform.Pipeline
	journal     *journal.Store
	metrics     *metrics.Recorder
	locks       *namespaceLocks
	concurrency int
	newID       func() string
}

// NewService wires a Service. Journal and Metrics may be nil.
func NewService(backend storage.Backend, pipeline *transform.Pipeline, opts Options) *Service {
	concurrency := opts.BatchConcurrency
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &Service{
		backend:     backend,
		pipeline:    pipeline,
		journal:     opts.Journal,
		metrics:     opts.Metrics,
		locks:       newNamespaceLocks(),
		concurrency: concurrency,
		newID:       uuid.NewString,
	}
}

// Backend returns the storage backend the service writes to.
func (s *Service) Backend() storage.Backend { return s.backend }

// Upload transforms one file according to plan and stores it under purpose.
// baseURL is the public origin used to build the returned URL.
func (s *Service) Upload(ctx context.Context, file File, plan transform.Plan, purpose, baseURL string) (*Artifact, error) {
	art, err := s.upload(ctx, file, plan, purpose, baseURL)
	s.recordUpload(purpose, art, err)
	return art, err
}

func (s *Service) upload(ctx context.Context, file File, plan transform.Plan, purpose, baseURL string) (*Artifact, error) {
	if _, err := transform.CheckPurpose(purpose); err != nil {
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, failures.Validation(msgNoFile)
	}

	start := time.Now()
	res, err := s.pipeline.Apply(ctx, file.Data, plan)
	if err != nil {
		return nil, err
	}
	s.metrics.Transform(res.Format, time.Since(start))

	key := storage.Place(purpose, s.newID(), res.Format)

	unlock := s.locks.shared(purpose)
	err = s.backend.Put(ctx, key, bytes.NewReader(res.Data), int64(len(res.Data)), encoder.ContentType(res.Format))
	unlock()
	if err != nil {
		return nil, err
	}
	s.metrics.Stored(int64(len(res.Data)))

	logger.Infof("Stored '%s' as %s (%d bytes)", file.Name, key, len(res.Data))
	return &Artifact{
		Key:     key,
		URL:     storage.PublicURL(baseURL, key),
		Purpose: purpose,
		Format:  res.Format,
		Size:    int64(len(res.Data)),
		Width:   res.Width,
		Height:  res.Height,
	}, nil
}

// UploadBatch uploads every file independently with bounded parallelism.
// One result per file is returned in input order. The error is non-nil
// only when there were no files or every file failed, in which case it is
// the first file's error.
func (s *Service) UploadBatch(ctx context.Context, files []File, plan transform.Plan, purpose, baseURL string) ([]BatchResult, error) {
	if len(files) == 0 {
		return nil, failures.Validation(msgNoFile)
	}

	results := make([]BatchResult, len(files))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, f := range files {
		g.Go(func() error {
			art, err := s.Upload(ctx, f, plan, purpose, baseURL)
			results[i] = BatchResult{File: f.Name, Artifact: art, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err == nil {
			return results, nil
		}
	}
	return results, results[0].Err
}

// DeleteByURL removes the artifact a previous upload returned as rawURL.
func (s *Service) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := storage.KeyFromURL(rawURL)
	if err == nil {
		purpose, _, _ := strings.Cut(key, "/")
		unlock := s.locks.shared(purpose)
		err = s.backend.Delete(ctx, key)
		unlock()
	}

	s.record(journal.Record{Action: journal.ActionDelete, Key: key}, err)
	s.metrics.Delete("file", outcome(err))
	if err != nil {
		return err
	}
	logger.Infof("Deleted %s", key)
	return nil
}

// DeleteNamespace removes purpose and everything stored under it. Uploads
// into the same purpose wait until the removal has finished.
func (s *Service) DeleteNamespace(ctx context.Context, purpose string) error {
	_, err := transform.CheckPurpose(purpose)
	if err == nil {
		unlock := s.locks.exclusive(purpose)
		err = s.backend.DeleteNamespace(ctx, purpose)
		unlock()
	}

	s.record(journal.Record{Action: journal.ActionDeleteNamespace, Purpose: purpose}, err)
	s.metrics.Delete("namespace", outcome(err))
	if err != nil {
		return err
	}
	logger.Infof("Deleted namespace %s", purpose)
	return nil
}

// List enumerates every namespace and the public URL of each artifact.
func (s *Service) List(ctx context.Context, baseURL string) ([]models.ListEntry, error) {
	namespaces, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ListEntry, 0, len(namespaces))
	for _, ns := range namespaces {
		urls := make([]string, 0, len(ns.Files))
		for _, name := range ns.Files {
			urls = append(urls, storage.PublicURL(baseURL, ns.Purpose+"/"+name))
		}
		out = append(out, models.ListEntry{Purpose: ns.Purpose, Length: len(urls), Files: urls})
	}
	return out, nil
}

func (s *Service) recordUpload(purpose string, art *Artifact, err error) {
	rec := journal.Record{Action: journal.ActionUpload, Purpose: purpose}
	if art != nil {
		rec.Key = art.Key
		rec.Format = art.Format
		rec.Size = art.Size
	}
	s.record(rec, err)
	s.metrics.Upload(outcome(err))
	if err != nil && !failures.IsPublic(err) {
		logger.Errorf("Upload into %s failed: %v", purpose, err)
	}
}

func (s *Service) record(rec journal.Record, err error) {
	rec.Outcome = outcome(err)
	if err != nil {
		rec.Error = err.Error()
	}
	if jErr := s.journal.Append(rec); jErr != nil {
		// The journal is diagnostic; its failures never fail a request.
		logger.Warnf("Failed to append journal record: %v", jErr)
	}
}

func outcome(err error) string {
	if err != nil {
		return journal.OutcomeFailure
	}
	return journal.OutcomeSuccess
}
