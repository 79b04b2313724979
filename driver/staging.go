package driver

import (
	"errors"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/macgrid/config"
)

// BackingStore supplies operand bytes to the staging buffer at line
// granularity.
type BackingStore interface {
	// ReadLine fills buf with len(buf) bytes starting at addr.
	ReadLine(addr uint64, buf []byte)
}

// StagingStats holds staging buffer traffic counters.
type StagingStats struct {
	Fetches   uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns the fraction of fetches served without a line fill.
func (s StagingStats) HitRate() float64 {
	if s.Fetches == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Fetches)
}

// StagingBuffer keeps recently fetched operand lines in front of the
// broadcast buses. Tag and replacement state live in an Akita cache
// directory. The buffer is read-only toward its backing store: lines
// are never dirty and eviction never writes back.
type StagingBuffer struct {
	lineSize int
	assoc    int

	directory *akitacache.DirectoryImpl
	store     [][]byte
	scratch   []byte

	backing BackingStore
	stats   StagingStats
}

// NewStagingBuffer builds a buffer with the given geometry over the
// backing store.
func NewStagingBuffer(
	cfg config.StagingConfig,
	backing BackingStore,
) (*StagingBuffer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid staging geometry: %w", err)
	}
	if backing == nil {
		return nil, errors.New("nil backing store")
	}

	numSets := cfg.Size / (cfg.Associativity * cfg.LineSize)
	store := make([][]byte, numSets*cfg.Associativity)
	for i := range store {
		store[i] = make([]byte, cfg.LineSize)
	}

	return &StagingBuffer{
		lineSize: cfg.LineSize,
		assoc:    cfg.Associativity,
		directory: akitacache.NewDirectory(
			numSets,
			cfg.Associativity,
			cfg.LineSize,
			akitacache.NewLRUVictimFinder(),
		),
		store:   store,
		scratch: make([]byte, cfg.LineSize),
		backing: backing,
	}, nil
}

// lineIndex computes the index into store for a directory block.
func (s *StagingBuffer) lineIndex(block *akitacache.Block) int {
	return block.SetID*s.assoc + block.WayID
}

// ReadByte fetches one operand byte through the buffer, filling the
// containing line from the backing store on a miss.
func (s *StagingBuffer) ReadByte(addr uint64) byte {
	s.stats.Fetches++

	lineAddr := addr / uint64(s.lineSize) * uint64(s.lineSize)
	offset := addr % uint64(s.lineSize)

	block := s.directory.Lookup(0, lineAddr) // single address space
	if block != nil && block.IsValid {
		s.stats.Hits++
		s.directory.Visit(block)
		return s.store[s.lineIndex(block)][offset]
	}

	s.stats.Misses++

	victim := s.directory.FindVictim(lineAddr)
	if victim == nil {
		// No way to place the line; serve the fetch uncached.
		s.backing.ReadLine(lineAddr, s.scratch)
		return s.scratch[offset]
	}

	if victim.IsValid {
		s.stats.Evictions++
	}

	line := s.store[s.lineIndex(victim)]
	s.backing.ReadLine(lineAddr, line)

	victim.Tag = lineAddr
	victim.IsValid = true
	victim.IsDirty = false
	s.directory.Visit(victim)

	return line[offset]
}

// ReadVector fills dst with the bytes at base, base+stride,
// base+2*stride, and so on, each fetched through the buffer.
func (s *StagingBuffer) ReadVector(dst []uint8, base, stride uint64) {
	for i := range dst {
		dst[i] = s.ReadByte(base + uint64(i)*stride)
	}
}

// Stats returns the traffic counters.
func (s *StagingBuffer) Stats() StagingStats {
	return s.stats
}

// Reset invalidates every line and zeroes the counters.
func (s *StagingBuffer) Reset() {
	s.directory.Reset()
	s.stats = StagingStats{}
}
