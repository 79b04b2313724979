package grid_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/macgrid/grid"
	"github.com/sarchlab/macgrid/mac"
)

var _ = Describe("PE", func() {
	var (
		pe     *grid.PE
		accept grid.Control
		hold   grid.Control
		clear  grid.Control
	)

	BeforeEach(func() {
		u, err := mac.New(17)
		Expect(err).NotTo(HaveOccurred())
		pe, err = grid.NewPE(u)
		Expect(err).NotTo(HaveOccurred())

		accept = grid.Control{DataValid: true, ReadEnable: true}
		hold = grid.Control{ReadEnable: true}
		clear = grid.Control{ClearAcc: true, ReadEnable: true}
	})

	It("should reject a nil unit", func() {
		_, err := grid.NewPE(nil)
		Expect(err).To(HaveOccurred())
	})

	It("should start zeroed and not done", func() {
		Expect(pe.Result()).To(Equal(int64(0)))
		Expect(pe.Done()).To(BeFalse())
		Expect(pe.Overflow()).To(BeFalse())
		Expect(pe.Ready()).To(BeTrue())
	})

	It("should commit an accept within one step", func() {
		pe.Step(100, 100, accept)

		Expect(pe.Result()).To(Equal(int64(10000)))
		Expect(pe.Done()).To(BeTrue())
		Expect(pe.Ready()).To(BeTrue())
	})

	It("should hold state through steps with nothing asserted", func() {
		pe.Step(100, 100, accept)
		pe.Step(5, 5, hold)

		Expect(pe.Result()).To(Equal(int64(10000)))
		Expect(pe.Done()).To(BeTrue())
	})

	It("should clear the accumulator and status", func() {
		pe.Step(100, 100, accept)
		pe.Step(0, 0, clear)

		Expect(pe.Result()).To(Equal(int64(0)))
		Expect(pe.Done()).To(BeFalse())
		Expect(pe.Overflow()).To(BeFalse())
	})

	It("should clear identically whether issued once or twice", func() {
		pe.Step(100, 100, accept)
		pe.Step(0, 0, clear)
		pe.Step(0, 0, clear)

		Expect(pe.Result()).To(Equal(int64(0)))
		Expect(pe.Done()).To(BeFalse())
		Expect(pe.Overflow()).To(BeFalse())
	})

	It("should let clear dominate a simultaneous accept", func() {
		pe.Step(100, 100, accept)
		pe.Step(100, 100, grid.Control{
			DataValid:  true,
			ClearAcc:   true,
			ReadEnable: true,
		})

		Expect(pe.Result()).To(Equal(int64(0)))
		Expect(pe.Done()).To(BeFalse())
	})

	It("should keep overflow sticky until cleared", func() {
		for i := 0; i < 7; i++ {
			pe.Step(100, 100, accept)
		}
		Expect(pe.Overflow()).To(BeTrue())

		// An in-range step must not wash the flag out.
		pe.Step(1, 255, accept)
		Expect(pe.Overflow()).To(BeTrue())

		pe.Step(0, 0, clear)
		Expect(pe.Overflow()).To(BeFalse())
	})

	It("should accumulate while outputs are hidden", func() {
		blind := grid.Control{DataValid: true}
		pe.Step(100, 100, blind)

		Expect(pe.Done()).To(BeFalse())
		Expect(pe.Result()).To(Equal(int64(10000)))

		// The next visible step exposes the flag it was holding.
		pe.Step(0, 0, hold)
		Expect(pe.Done()).To(BeTrue())
	})

	It("should never hide overflow", func() {
		saturating, err := mac.New(8)
		Expect(err).NotTo(HaveOccurred())
		pe, err = grid.NewPE(saturating)
		Expect(err).NotTo(HaveOccurred())

		pe.Step(100, 100, grid.Control{DataValid: true})
		Expect(pe.Done()).To(BeFalse())
		Expect(pe.Overflow()).To(BeTrue())
	})
})
