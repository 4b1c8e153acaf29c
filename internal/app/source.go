package app

import (
	"fmt"
	"log"

	"github.com/relabs-tech/evidence_viewer/internal/config"
	"github.com/relabs-tech/evidence_viewer/internal/frames"
)

// newFrameSource builds the configured frame source. Shared by the station
// and web binaries so both shells review identical footage.
func newFrameSource(cfg *config.Config) (frames.Source, error) {
	switch cfg.FrameSource {
	case "mock":
		log.Println("using generated test pattern as frame source")
		return frames.NewMockSource(0, 0), nil
	case "still":
		src, err := frames.NewStillSource(cfg.FramePath)
		if err != nil {
			return nil, fmt.Errorf("still frame source: %w", err)
		}
		log.Printf("loaded still frame from %s", cfg.FramePath)
		return src, nil
	case "sequence":
		src, err := frames.NewSequenceSource(cfg.FramePath, cfg.SequenceFPS)
		if err != nil {
			return nil, fmt.Errorf("sequence frame source: %w", err)
		}
		log.Printf("loaded frame sequence from %s at %.2f fps", cfg.FramePath, cfg.SequenceFPS)
		return src, nil
	}
	return nil, fmt.Errorf("unknown FRAME_SOURCE %q", cfg.FrameSource)
}
