// Package service provides image loading and metadata extraction services.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/sync/errgroup"
)

// ErrEmptySource is returned when an image source is blank.
var ErrEmptySource = errors.New("empty image source")

// maxRemoteBytes caps the size of an image fetched over HTTP.
const maxRemoteBytes = 64 << 20

// ImageInfo holds metadata about an image.
type ImageInfo struct {
	Width    int
	Height   int
	Size     int64
	ModTime  time.Time
	EXIFData map[string]string
}

// PairResult is the outcome of loading a before/after pair. Each side
// carries its own error so one broken image does not hide the other.
type PairResult struct {
	Before    image.Image
	After     image.Image
	BeforeErr error
	AfterErr  error
}

// ImageService provides methods for loading and decoding images.
type ImageService struct {
	client *http.Client
}

// NewImageService creates a new ImageService. A nil client uses a client
// with a 30 second timeout.
func NewImageService(client *http.Client) *ImageService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageService{client: client}
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// localPath turns a file:// URL or a plain path into a filesystem path.
func localPath(src string) (string, error) {
	if !strings.HasPrefix(src, "file://") {
		return src, nil
	}
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", src, err)
	}
	return u.Path, nil
}

// Open returns a reader for a local path, file:// URL or http(s) URL.
func (is *ImageService) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptySource
	}
	if !IsRemote(src) {
		path, err := localPath(src)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening file: %w", err)
		}
		return file, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := is.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status %s", src, resp.Status)
	}
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxRemoteBytes), resp.Body}, nil
}

// Load fetches and decodes an image.
func (is *ImageService) Load(ctx context.Context, src string) (image.Image, error) {
	rc, err := is.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	return img, nil
}

// LoadPair loads both sides of a comparison concurrently. Errors are
// reported per side; the returned error is only set when ctx ends first.
func (is *ImageService) LoadPair(ctx context.Context, before, after string) (PairResult, error) {
	var res PairResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Before, res.BeforeErr = is.Load(gctx, before)
		return nil
	})
	g.Go(func() error {
		res.After, res.AfterErr = is.Load(gctx, after)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// GetImageInfo reads an image file and extracts metadata without decoding the full image,
// which is significantly more performant.
func (is *ImageService) GetImageInfo(path string) (*ImageInfo, error) {
	path, err := localPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	// Efficiently get image dimensions without decoding the entire image.
	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("decoding image config: %w", err)
	}

	// Reset file pointer to read EXIF data
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seeking file for exif: %w", err)
	}

	exifData, _ := exif.Decode(file) // Ignore error, EXIF might not be present

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("getting file stats: %w", err)
	}

	info := &ImageInfo{
		Width:    config.Width,
		Height:   config.Height,
		Size:     fileInfo.Size(),
		ModTime:  fileInfo.ModTime(),
		EXIFData: make(map[string]string),
	}

	if exifData != nil {
		if camModel, err := exifData.Get(exif.Model); err == nil {
			info.EXIFData["Camera Model"] = camModel.String()
		}
		if fNum, err := exifData.Get(exif.FNumber); err == nil {
			numer, denom, _ := fNum.Rat2(0)
			info.EXIFData["F-Number"] = fmt.Sprintf("f/%.1f", float64(numer)/float64(denom))
		}
		if expTime, err := exifData.Get(exif.ExposureTime); err == nil {
			numer, denom, _ := expTime.Rat2(0)
			info.EXIFData["Exposure Time"] = fmt.Sprintf("%d/%d s", numer, denom)
		}
	}

	return info, nil
}

// GetEmbeddedThumbnail attempts to read an embedded EXIF thumbnail from an image file.
func (is *ImageService) GetEmbeddedThumbnail(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file for thumbnail: %w", err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("no EXIF data: %w", err)
	}

	thumbBytes, err := x.JpegThumbnail()
	if err != nil {
		return nil, fmt.Errorf("no JPEG thumbnail in EXIF: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(thumbBytes))
	return img, err
}

// Thumbnail returns a small image for src. Local files try the embedded
// EXIF thumbnail first; everything else is decoded in full.
func (is *ImageService) Thumbnail(ctx context.Context, src string) (image.Image, error) {
	if !IsRemote(src) {
		if path, err := localPath(src); err == nil {
			if img, err := is.GetEmbeddedThumbnail(path); err == nil {
				return img, nil
			}
		}
	}
	return is.Load(ctx, src)
}
