package tablebase

import (
	"os"

	"github.com/hailam/chessplay/internal/board"
)

// SyzygyProber is a thin hook point for local Syzygy tablebase files. It
// only reports whether a directory of WDL/DTZ files is present; reading
// the files themselves is out of scope here; wire a real decoder behind
// this Prober when one is needed.
type SyzygyProber struct {
	path      string
	available bool
}

// NewSyzygyProber creates a prober rooted at path. An empty path leaves
// the prober permanently unavailable.
func NewSyzygyProber(path string) *SyzygyProber {
	sp := &SyzygyProber{path: path}
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			sp.available = true
		}
	}
	return sp
}

// Probe always reports not found: no local WDL/DTZ decoder is wired in.
func (sp *SyzygyProber) Probe(pos *board.Position) ProbeResult {
	return ProbeResult{Found: false}
}

// ProbeRoot always reports not found, for the same reason as Probe.
func (sp *SyzygyProber) ProbeRoot(pos *board.Position) RootResult {
	return RootResult{Found: false}
}

// MaxPieces reports the largest tablebase size this prober could ever
// serve, independent of whether any files are actually present.
func (sp *SyzygyProber) MaxPieces() int {
	return 7
}

// Available reports whether a tablebase directory was found at
// construction time. It does not imply Probe can find anything in it.
func (sp *SyzygyProber) Available() bool {
	return sp.available
}

// Path returns the configured tablebase directory.
func (sp *SyzygyProber) Path() string {
	return sp.path
}
