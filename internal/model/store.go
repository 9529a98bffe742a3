package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deksmo/deksmo/internal/naturalsort"
)

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrImageNotFound   = errors.New("image not found")
	// ErrChapterBusy rejects mutations on a chapter while it is exported.
	ErrChapterBusy = errors.New("chapter is being processed")
)

// Store holds the in-memory chapter list. Every operation is atomic under
// one mutex; callers that need multi-step transactions serialize externally.
type Store struct {
	mu       sync.Mutex
	chapters []*Chapter
}

func NewStore() *Store {
	return &Store{}
}

// AddChapters appends chapters and re-sorts the whole list in natural order
// by name. Later user reorderings of images are never re-sorted.
func (s *Store) AddChapters(chapters ...*Chapter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chapters = append(s.chapters, chapters...)
	sort.SliceStable(s.chapters, func(i, j int) bool {
		return naturalsort.Less(s.chapters[i].Name, s.chapters[j].Name)
	})
}

func (s *Store) RemoveChapter(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.chapters {
		if c.ID != id {
			continue
		}
		if c.IsProcessing {
			return ErrChapterBusy
		}
		for _, img := range c.Images {
			img.Release()
		}
		s.chapters = append(s.chapters[:i], s.chapters[i+1:]...)
		return nil
	}
	return ErrChapterNotFound
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.chapters {
		for _, img := range c.Images {
			img.Release()
		}
	}
	s.chapters = nil
}

// RenameChapter sets a new name unless its trimmed form is empty, in which
// case the prior name is kept. The effective name is returned either way.
func (s *Store) RenameChapter(id, newName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return "", ErrChapterNotFound
	}
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return c.Name, nil
	}
	if c.IsProcessing {
		return c.Name, ErrChapterBusy
	}
	c.Name = trimmed
	return c.Name, nil
}

func (s *Store) RemoveImage(chapterID, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(chapterID)
	if c == nil {
		return ErrChapterNotFound
	}
	if c.IsProcessing {
		return ErrChapterBusy
	}
	i := c.indexOfImage(imageID)
	if i < 0 {
		return ErrImageNotFound
	}
	c.Images[i].Release()
	c.Images = append(c.Images[:i], c.Images[i+1:]...)
	return nil
}

// ReorderImage moves an image to toIndex within its chapter, preserving the
// relative order of everything else. toIndex is clamped to the valid range.
func (s *Store) ReorderImage(chapterID, imageID string, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(chapterID)
	if c == nil {
		return ErrChapterNotFound
	}
	if c.IsProcessing {
		return ErrChapterBusy
	}
	from := c.indexOfImage(imageID)
	if from < 0 {
		return ErrImageNotFound
	}
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex >= len(c.Images) {
		toIndex = len(c.Images) - 1
	}
	if from == toIndex {
		return nil
	}

	img := c.Images[from]
	c.Images = append(c.Images[:from], c.Images[from+1:]...)
	rest := append([]*Image(nil), c.Images[toIndex:]...)
	c.Images = append(c.Images[:toIndex], img)
	c.Images = append(c.Images, rest...)
	return nil
}

// InsertImages adds images to an existing chapter at atIndex; a negative
// index or one past the end appends.
func (s *Store) InsertImages(chapterID string, images []*Image, atIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(chapterID)
	if c == nil {
		return ErrChapterNotFound
	}
	if c.IsProcessing {
		return ErrChapterBusy
	}
	if atIndex < 0 || atIndex > len(c.Images) {
		atIndex = len(c.Images)
	}
	rest := append([]*Image(nil), c.Images[atIndex:]...)
	c.Images = append(c.Images[:atIndex], images...)
	c.Images = append(c.Images, rest...)
	return nil
}

// SetProcessing flips the processing flag. At most one chapter may be
// processing at a time; a second concurrent claim is an error.
func (s *Store) SetProcessing(id string, processing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return ErrChapterNotFound
	}
	if processing {
		for _, other := range s.chapters {
			if other.IsProcessing && other.ID != id {
				return fmt.Errorf("chapter %q already processing: %w", other.Name, ErrChapterBusy)
			}
		}
	}
	c.IsProcessing = processing
	return nil
}

// GetChapter returns a snapshot of one chapter.
func (s *Store) GetChapter(id string) (*Chapter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, false
	}
	return c.snapshot(), true
}

// ListChapters returns snapshots of all chapters in current order.
func (s *Store) ListChapters() []*Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Chapter, len(s.chapters))
	for i, c := range s.chapters {
		out[i] = c.snapshot()
	}
	return out
}

func (s *Store) find(id string) *Chapter {
	for _, c := range s.chapters {
		if c.ID == id {
			return c
		}
	}
	return nil
}
