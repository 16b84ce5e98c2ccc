// utils/images.go
package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"fullybooked/models"
)

// ImageSourceKind discriminates where a cover image comes from. A source is
// resolved exactly once at the request boundary instead of type-sniffing
// deeper in the upload path.
type ImageSourceKind int

const (
	// ImageRemoteURL is an already-hosted image; stored as-is.
	ImageRemoteURL ImageSourceKind = iota
	// ImageLocalPath is a path on the server's filesystem.
	ImageLocalPath
	// ImageUploadHandle is a file arriving in the multipart form.
	ImageUploadHandle
)

// ImageSource is a tagged union: exactly the field matching Kind is set.
type ImageSource struct {
	Kind     ImageSourceKind
	URL      string
	Path     string
	File     multipart.File
	Filename string
}

// ResolveImageSources pulls cover images out of a multipart request: uploaded
// files under the "images" field plus any pre-hosted URLs under "image_urls".
// The request must already have had ParseMultipartForm called.
func ResolveImageSources(r *http.Request) []ImageSource {
	var sources []ImageSource
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				continue
			}
			sources = append(sources, ImageSource{
				Kind:     ImageUploadHandle,
				File:     file,
				Filename: header.Filename,
			})
		}
		for _, url := range r.MultipartForm.Value["image_urls"] {
			if url != "" {
				sources = append(sources, ImageSource{Kind: ImageRemoteURL, URL: url})
			}
		}
	}
	return sources
}

// ImageStorage persists a resolved image source and returns its public URL.
type ImageStorage interface {
	Save(src ImageSource) (string, error)
}

// LocalImageStorage writes uploads under Dir and serves them under BaseURL.
type LocalImageStorage struct {
	Dir     string
	BaseURL string
}

// NewLocalImageStorage creates the upload directory if needed.
func NewLocalImageStorage(dir, baseURL string) (*LocalImageStorage, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStorage{Dir: dir, BaseURL: baseURL}, nil
}

// Save persists the source. Remote URLs pass through untouched; local paths
// and upload handles are copied into Dir under a unique name.
func (ls *LocalImageStorage) Save(src ImageSource) (string, error) {
	switch src.Kind {
	case ImageRemoteURL:
		return src.URL, nil
	case ImageLocalPath:
		f, err := os.Open(src.Path)
		if err != nil {
			return "", fmt.Errorf("failed to open image %s: %w", src.Path, err)
		}
		defer f.Close()
		return ls.write(f, filepath.Base(src.Path))
	case ImageUploadHandle:
		defer src.File.Close()
		return ls.write(src.File, src.Filename)
	}
	return "", fmt.Errorf("unknown image source kind %d", src.Kind)
}

func (ls *LocalImageStorage) write(r io.Reader, original string) (string, error) {
	filename := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(original))
	dst, err := os.Create(filepath.Join(ls.Dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file on server: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return ls.BaseURL + "/" + filename, nil
}

// SaveAll saves every source, capping at the book cover limit.
func SaveAll(storage ImageStorage, sources []ImageSource) ([]string, error) {
	if len(sources) > models.MaxCoverImages {
		sources = sources[:models.MaxCoverImages]
	}
	var urls []string
	for _, src := range sources {
		url, err := storage.Save(src)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
