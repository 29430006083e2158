package session

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/example/cropstudio/internal/canvas"
	"github.com/example/cropstudio/internal/export"
)

// ErrNoImages indicates a scanned folder contained no usable image files.
var ErrNoImages = errors.New("no images found")

// imageExts lists the file extensions accepted by Scan, lower case.
var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// ImageSet is an ordered list of image paths with a cursor into it.
type ImageSet struct {
	Paths []string
	Index int
}

// Scan builds an ImageSet from the image files directly inside dir.
// Subdirectories and files with other extensions are skipped. The order is
// whatever the filesystem enumeration yields.
func Scan(dir string) (*ImageSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %q: %w", dir, err)
	}
	set := &ImageSet{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExts[ext]; !ok {
			continue
		}
		set.Paths = append(set.Paths, filepath.Join(dir, entry.Name()))
	}
	if len(set.Paths) == 0 {
		return nil, ErrNoImages
	}
	return set, nil
}

// Stem returns the file name without directory or extension, used as the
// per-image output subdirectory name.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Session owns the state for the currently open folder: the image set, the
// decoded current image, the committed crop regions for that image, and the
// export options. It is only ever touched from the UI event goroutine.
type Session struct {
	Images  *ImageSet
	Current *image.NRGBA
	Regions []canvas.Region
	Options export.Options

	// CropMode controls how canvas presses are interpreted: on, they start a
	// draft region; off, they drag existing regions or pan the view.
	CropMode bool
}

// New returns a Session with the given export option defaults.
func New(opts export.Options) *Session {
	return &Session{Options: opts}
}

// OpenFolder scans dir and loads its first image. On error the session is
// left unchanged.
func (s *Session) OpenFolder(dir string) error {
	set, err := Scan(dir)
	if err != nil {
		return err
	}
	prev := s.Images
	s.Images = set
	if err := s.Load(0); err != nil {
		s.Images = prev
		return err
	}
	return nil
}

// Load decodes the image at index i and makes it current. Committed regions
// always belong to a single image, so they are cleared on every load.
func (s *Session) Load(i int) error {
	if s.Images == nil || i < 0 || i >= len(s.Images.Paths) {
		return fmt.Errorf("image index %d out of range", i)
	}
	path := s.Images.Paths[i]
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("decode %q: %w", path, err)
	}
	s.Images.Index = i
	s.Current = imaging.Clone(img)
	s.Regions = s.Regions[:0]
	return nil
}

// Next advances to the following image in the set, if any.
func (s *Session) Next() error {
	if s.Images == nil || s.Images.Index+1 >= len(s.Images.Paths) {
		return nil
	}
	return s.Load(s.Images.Index + 1)
}

// Prev steps back to the previous image in the set, if any.
func (s *Session) Prev() error {
	if s.Images == nil || s.Images.Index == 0 {
		return nil
	}
	return s.Load(s.Images.Index - 1)
}

// CurrentPath returns the path of the loaded image, or "" when nothing is
// loaded.
func (s *Session) CurrentPath() string {
	if s.Images == nil || s.Images.Index >= len(s.Images.Paths) {
		return ""
	}
	return s.Images.Paths[s.Images.Index]
}

// Commit appends a region to the session's ordered collection.
func (s *Session) Commit(r canvas.Region) {
	s.Regions = append(s.Regions, r)
}
