package frames

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// SequenceSource plays a directory of numbered stills as a clip. Frames are
// pre-extracted from the recording upstream (this tool does not decode
// video); playback position advances on the wall clock while playing, so no
// goroutine is needed. The clip loops, which suits repeated review passes.
type SequenceSource struct {
	mu    sync.Mutex
	paths []string
	fps   float64

	playing   bool
	pos       time.Duration // position at the last transport change
	startedAt time.Time     // wall time of the last transport change

	rate float64

	cacheIdx int
	cacheImg image.Image

	w, h int
}

// NewSequenceSource lists the .png/.jpg/.jpeg files under dir in name order
// and decodes the first frame to learn the native dimensions.
func NewSequenceSource(dir string, fps float64) (*SequenceSource, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("sequence fps must be positive, got %v", fps)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames in %s", dir)
	}

	s := &SequenceSource{paths: paths, fps: fps, rate: 1, cacheIdx: -1}
	first, ok := s.decode(0)
	if !ok {
		return nil, fmt.Errorf("decode first frame %s", paths[0])
	}
	b := first.Bounds()
	s.w, s.h = b.Dx(), b.Dy()
	return s, nil
}

// position computes the current playback position. Caller holds s.mu.
func (s *SequenceSource) position() time.Duration {
	if !s.playing {
		return s.pos
	}
	elapsed := time.Since(s.startedAt)
	return s.pos + time.Duration(float64(elapsed)*s.rate)
}

// decode loads the frame at idx, keeping a one-frame cache so a paused clip
// costs nothing per tick. Caller holds s.mu.
func (s *SequenceSource) decode(idx int) (image.Image, bool) {
	if idx == s.cacheIdx && s.cacheImg != nil {
		return s.cacheImg, true
	}
	f, err := os.Open(s.paths[idx])
	if err != nil {
		log.Printf("frames: open %s: %v", s.paths[idx], err)
		return nil, false
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		log.Printf("frames: decode %s: %v", s.paths[idx], err)
		return nil, false
	}
	s.cacheIdx = idx
	s.cacheImg = img
	return img, true
}

func (s *SequenceSource) Frame() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := int(s.position().Seconds() * s.fps)
	n := len(s.paths)
	idx = ((idx % n) + n) % n
	return s.decode(idx)
}

func (s *SequenceSource) Dims() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *SequenceSource) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return
	}
	s.playing = true
	s.startedAt = time.Now()
}

func (s *SequenceSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}
	s.pos = s.position()
	s.playing = false
}

func (s *SequenceSource) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *SequenceSource) Seek(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	s.pos = pos
	s.startedAt = time.Now()
}

func (s *SequenceSource) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position()
}

// SetRate rebases the position first so already-elapsed time keeps its old
// speed and only the future scales.
func (s *SequenceSource) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rate <= 0 {
		rate = 1
	}
	s.pos = s.position()
	s.startedAt = time.Now()
	s.rate = rate
}

func (s *SequenceSource) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}
