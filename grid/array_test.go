package grid_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/macgrid/fp8"
	"github.com/sarchlab/macgrid/grid"
	"github.com/sarchlab/macgrid/mac"
)

func intUnits(width uint) func() (grid.Unit, error) {
	return func() (grid.Unit, error) {
		return mac.New(width)
	}
}

func fp8Units() (grid.Unit, error) {
	return fp8.Unit{}, nil
}

var _ = Describe("NewArray", func() {
	It("should reject non-positive dimensions", func() {
		_, err := grid.NewArray(0, 2, intUnits(32))
		Expect(err).To(HaveOccurred())

		_, err = grid.NewArray(2, -1, intUnits(32))
		Expect(err).To(HaveOccurred())
	})

	It("should reject a nil unit constructor", func() {
		_, err := grid.NewArray(2, 2, nil)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a mapping the grid cannot satisfy", func() {
		_, err := grid.NewArray(2, 2, intUnits(32),
			grid.WithMapping(grid.Elementwise{}))
		Expect(err).To(HaveOccurred())
	})

	It("should name the lane whose unit failed to build", func() {
		calls := 0
		failing := func() (grid.Unit, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("unit construction failed")
			}
			return mac.New(32)
		}

		_, err := grid.NewArray(2, 3, failing)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("lane (0,1)"))
	})

	It("should build one unit per lane", func() {
		built := 0
		counted := func() (grid.Unit, error) {
			built++
			return mac.New(32)
		}

		_, err := grid.NewArray(2, 3, counted)
		Expect(err).NotTo(HaveOccurred())
		Expect(built).To(Equal(6))
	})
})

var _ = Describe("Array", func() {
	var (
		accept grid.Control
		clear  grid.Control
	)

	BeforeEach(func() {
		accept = grid.Control{DataValid: true, ReadEnable: true}
		clear = grid.Control{ClearAcc: true, ReadEnable: true}
	})

	It("should reject operand vectors of the wrong length", func() {
		a, err := grid.NewArray(2, 3, intUnits(32))
		Expect(err).NotTo(HaveOccurred())

		err = a.Step([]uint8{1, 2, 3}, []uint8{4, 5, 6}, accept)
		Expect(err).To(HaveOccurred())
	})

	It("should route a across rows and b across columns", func() {
		a, err := grid.NewArray(3, 3, intUnits(32))
		Expect(err).NotTo(HaveOccurred())

		err = a.Step([]uint8{1, 2, 3}, []uint8{5, 7, 11}, accept)
		Expect(err).NotTo(HaveOccurred())

		result, done, overflow := a.Read()
		Expect(result).To(Equal([][]int64{
			{5, 7, 11},
			{10, 14, 22},
			{15, 21, 33},
		}))
		Expect(done).To(BeTrue())
		Expect(overflow).To(BeFalse())
	})

	It("should accumulate across steps", func() {
		a, err := grid.NewArray(3, 3, intUnits(32))
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 2; i++ {
			err = a.Step([]uint8{1, 2, 3}, []uint8{5, 7, 11}, accept)
			Expect(err).NotTo(HaveOccurred())
		}

		result, _, _ := a.Read()
		Expect(result[2][2]).To(Equal(int64(66)))
		Expect(result[0][0]).To(Equal(int64(10)))
	})

	It("should pair vectors lane by lane under an elementwise mapping", func() {
		a, err := grid.NewArray(1, 4, intUnits(32),
			grid.WithMapping(grid.Elementwise{}))
		Expect(err).NotTo(HaveOccurred())

		err = a.Step(
			[]uint8{1, 2, 3, 4},
			[]uint8{10, 20, 30, 40},
			accept,
		)
		Expect(err).NotTo(HaveOccurred())

		result, _, _ := a.Read()
		Expect(result).To(Equal([][]int64{{10, 40, 90, 160}}))
	})

	It("should compute the floating-point product grid", func() {
		a, err := grid.NewArray(2, 2, fp8Units)
		Expect(err).NotTo(HaveOccurred())

		// a carries (1.0, 2.0) and b carries (1.5, 0.5); lane (i,j)
		// accumulates a[i]*b[j].
		err = a.Step([]uint8{0x38, 0x40}, []uint8{0x3C, 0x30}, accept)
		Expect(err).NotTo(HaveOccurred())

		result, done, overflow := a.Read()
		Expect(result).To(Equal([][]int64{
			{0x3C, 0x30},
			{0x44, 0x38},
		}))
		Expect(done).To(BeTrue())
		Expect(overflow).To(BeFalse())

		err = a.Step([]uint8{0x38, 0x40}, []uint8{0x3C, 0x30}, accept)
		Expect(err).NotTo(HaveOccurred())

		result, _, _ = a.Read()
		Expect(result).To(Equal([][]int64{
			{0x44, 0x38},
			{0x4C, 0x40},
		}))
	})

	It("should OR any lane's overflow into the array status", func() {
		a, err := grid.NewArray(2, 2, intUnits(8))
		Expect(err).NotTo(HaveOccurred())

		// Only lane (0,0) saturates its 8-bit accumulator.
		err = a.Step([]uint8{127, 1}, []uint8{127, 1}, accept)
		Expect(err).NotTo(HaveOccurred())

		result, done, overflow := a.Read()
		Expect(overflow).To(BeTrue())
		Expect(done).To(BeTrue())
		Expect(result[0][0]).To(Equal(int64(127)))
		Expect(result[1][1]).To(Equal(int64(1)))

		laneDone, laneOvf := a.Status()
		Expect(laneOvf[0][0]).To(BeTrue())
		Expect(laneOvf[1][1]).To(BeFalse())
		Expect(laneDone[0][0]).To(BeTrue())
	})

	It("should reset every lane on an array-wide clear", func() {
		a, err := grid.NewArray(2, 2, intUnits(8))
		Expect(err).NotTo(HaveOccurred())

		err = a.Step([]uint8{127, 1}, []uint8{127, 1}, accept)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 2; i++ {
			err = a.Step([]uint8{0, 0}, []uint8{0, 0}, clear)
			Expect(err).NotTo(HaveOccurred())
		}

		result, done, overflow := a.Read()
		Expect(result).To(Equal([][]int64{{0, 0}, {0, 0}}))
		Expect(done).To(BeFalse())
		Expect(overflow).To(BeFalse())
	})

	It("should report done only on read-enabled steps", func() {
		a, err := grid.NewArray(2, 2, intUnits(32))
		Expect(err).NotTo(HaveOccurred())

		blind := grid.Control{DataValid: true}
		err = a.Step([]uint8{1, 2}, []uint8{3, 4}, blind)
		Expect(err).NotTo(HaveOccurred())

		result, done, _ := a.Read()
		Expect(done).To(BeFalse())
		Expect(result[0][0]).To(Equal(int64(3)))

		err = a.Step([]uint8{0, 0}, []uint8{0, 0}, grid.Control{ReadEnable: true})
		Expect(err).NotTo(HaveOccurred())

		_, done, _ = a.Read()
		Expect(done).To(BeTrue())
	})
})
