package driver_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/macgrid/config"
	"github.com/sarchlab/macgrid/driver"
)

// patternStore hands back the low byte of each address and counts line
// fills.
type patternStore struct {
	lineReads int
}

func (p *patternStore) ReadLine(addr uint64, buf []byte) {
	p.lineReads++
	for i := range buf {
		buf[i] = byte(addr + uint64(i))
	}
}

var _ = Describe("StagingBuffer", func() {
	var (
		store *patternStore
		cfg   config.StagingConfig
	)

	BeforeEach(func() {
		store = &patternStore{}
		cfg = config.StagingConfig{
			Size:          64,
			Associativity: 2,
			LineSize:      16,
		}
	})

	It("should reject invalid geometry", func() {
		_, err := driver.NewStagingBuffer(config.StagingConfig{
			Size:          100,
			Associativity: 3,
			LineSize:      16,
		}, store)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a nil backing store", func() {
		_, err := driver.NewStagingBuffer(cfg, nil)
		Expect(err).To(HaveOccurred())
	})

	It("should fill a line once and hit within it", func() {
		sb, err := driver.NewStagingBuffer(cfg, store)
		Expect(err).NotTo(HaveOccurred())

		Expect(sb.ReadByte(5)).To(Equal(byte(5)))
		Expect(sb.ReadByte(5)).To(Equal(byte(5)))
		Expect(sb.ReadByte(15)).To(Equal(byte(15)))

		stats := sb.Stats()
		Expect(stats.Fetches).To(Equal(uint64(3)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(2)))
		Expect(store.lineReads).To(Equal(1))
	})

	It("should fetch distinct lines separately", func() {
		sb, err := driver.NewStagingBuffer(cfg, store)
		Expect(err).NotTo(HaveOccurred())

		Expect(sb.ReadByte(0)).To(Equal(byte(0)))
		Expect(sb.ReadByte(16)).To(Equal(byte(16)))
		Expect(sb.ReadByte(300)).To(Equal(byte(44)))

		Expect(sb.Stats().Misses).To(Equal(uint64(3)))
	})

	It("should evict when a set runs out of ways", func() {
		// A single one-way set makes any two distinct lines conflict.
		tiny := config.StagingConfig{
			Size:          16,
			Associativity: 1,
			LineSize:      16,
		}
		sb, err := driver.NewStagingBuffer(tiny, store)
		Expect(err).NotTo(HaveOccurred())

		Expect(sb.ReadByte(0)).To(Equal(byte(0)))
		Expect(sb.ReadByte(16)).To(Equal(byte(16)))
		Expect(sb.ReadByte(0)).To(Equal(byte(0)))

		stats := sb.Stats()
		Expect(stats.Misses).To(Equal(uint64(3)))
		Expect(stats.Evictions).To(Equal(uint64(2)))
		Expect(stats.Hits).To(Equal(uint64(0)))
	})

	It("should read strided vectors through the buffer", func() {
		sb, err := driver.NewStagingBuffer(cfg, store)
		Expect(err).NotTo(HaveOccurred())

		dst := make([]uint8, 4)
		sb.ReadVector(dst, 2, 3)
		Expect(dst).To(Equal([]uint8{2, 5, 8, 11}))
	})

	It("should forget everything on reset", func() {
		sb, err := driver.NewStagingBuffer(cfg, store)
		Expect(err).NotTo(HaveOccurred())

		sb.ReadByte(5)
		sb.ReadByte(5)
		sb.Reset()

		Expect(sb.Stats()).To(Equal(driver.StagingStats{}))

		sb.ReadByte(5)
		Expect(sb.Stats().Misses).To(Equal(uint64(1)))
	})
})
