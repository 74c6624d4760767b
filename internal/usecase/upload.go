package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/V4T54L/brokerdesk/internal/adapter/metrics"
	"github.com/V4T54L/brokerdesk/internal/domain"
)

// UploadResult is what the client stores in a lead's file_url or files.
type UploadResult struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// UploadUseCase stores lead attachments in the blob store.
type UploadUseCase struct {
	blobs    domain.BlobStore
	maxBytes int64
	logger   *slog.Logger
	metrics  *metrics.PortalMetrics
}

// NewUploadUseCase creates a new UploadUseCase. m may be nil.
func NewUploadUseCase(blobs domain.BlobStore, maxBytes int64, logger *slog.Logger, m *metrics.PortalMetrics) *UploadUseCase {
	if maxBytes <= 0 {
		maxBytes = math.MaxInt64
	}
	return &UploadUseCase{blobs: blobs, maxBytes: maxBytes, logger: logger, metrics: m}
}

// Upload stores r under uploads/<actor>/<uuid><ext> and returns its public URL.
func (uc *UploadUseCase) Upload(ctx context.Context, actor, filename, contentType string, r io.Reader) (UploadResult, error) {
	key := path.Join("uploads", safeSegment(actor), uuid.NewString()+strings.ToLower(path.Ext(filename)))

	lr := &limitedReader{r: r, remaining: uc.maxBytes}
	url, size, err := uc.blobs.Put(ctx, key, lr, contentType)
	if lr.exceeded {
		uc.countUpload("too_large", 0)
		return UploadResult{}, fmt.Errorf("%w: limit is %d bytes", domain.ErrUploadTooLarge, uc.maxBytes)
	}
	if err != nil {
		uc.countUpload("error", 0)
		uc.logger.Error("failed to store upload", "error", err, "key", key, "actor", actor)
		return UploadResult{}, fmt.Errorf("failed to store upload: %w", err)
	}

	uc.countUpload("ok", size)
	uc.logger.Info("file uploaded", "key", key, "size", size, "actor", actor)
	return UploadResult{URL: url, Key: key, Size: size}, nil
}

func (uc *UploadUseCase) countUpload(status string, size int64) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.UploadsTotal.WithLabelValues(status).Inc()
	uc.metrics.UploadBytesTotal.Add(float64(size))
}

var errLimitExceeded = errors.New("upload limit exceeded")

// limitedReader fails instead of truncating once more than remaining bytes are read.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// Probe for one more byte to tell a file of exactly the limit from a bigger one.
		var one [1]byte
		n, err := l.r.Read(one[:])
		if n > 0 {
			l.exceeded = true
			return 0, errLimitExceeded
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func safeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "anonymous"
	}
	return s
}
