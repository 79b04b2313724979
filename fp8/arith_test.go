package fp8_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/macgrid/fp8"
)

var _ = Describe("Mul", func() {
	It("should multiply 0b00101101 by 0b00111000 exactly", func() {
		got, flags := fp8.Mul(fp8.Float8(0x2D), fp8.One)
		Expect(got).To(Equal(fp8.Float8(0x2D)))
		Expect(flags).To(Equal(fp8.Flags{}))
	})

	It("should XOR the operand signs", func() {
		got, _ := fp8.Mul(fp8.Float8(0xAD), fp8.One)
		Expect(got).To(Equal(fp8.Float8(0xAD)))

		got, _ = fp8.Mul(fp8.Float8(0xAD), fp8.Float8(0xB8))
		Expect(got).To(Equal(fp8.Float8(0x2D)))
	})

	It("should produce a signed zero from a zero operand", func() {
		got, _ := fp8.Mul(fp8.PositiveZero, fp8.Float8(0xC0))
		Expect(got).To(Equal(fp8.NegativeZero))

		got, _ = fp8.Mul(fp8.NegativeZero, fp8.Float8(0xC0))
		Expect(got).To(Equal(fp8.PositiveZero))
	})

	It("should propagate NaN operands as the canonical NaN", func() {
		got, flags := fp8.Mul(fp8.NaN, fp8.One)
		Expect(got).To(Equal(fp8.NaN))
		Expect(flags.NaN).To(BeTrue())
		Expect(flags.Overflow).To(BeFalse())

		got, _ = fp8.Mul(fp8.Float8(0xF9), fp8.One)
		Expect(got).To(Equal(fp8.NaN))
	})

	It("should promote a denormal product into the normal range", func() {
		// 0.013671875 * 2 = 0.02734375, a normal value.
		got, flags := fp8.Mul(fp8.Float8(0x07), fp8.Float8(0x40))
		Expect(got).To(Equal(fp8.Float8(0x0E)))
		Expect(flags).To(Equal(fp8.Flags{}))
	})

	It("should saturate past the finite range to NaN", func() {
		got, flags := fp8.Mul(fp8.MaxFinite, fp8.Float8(0x40))
		Expect(got).To(Equal(fp8.NaN))
		Expect(flags.Overflow).To(BeTrue())
		Expect(flags.NaN).To(BeTrue())
	})

	It("should keep the largest finite product finite", func() {
		got, flags := fp8.Mul(fp8.MaxFinite, fp8.One)
		Expect(got).To(Equal(fp8.MaxFinite))
		Expect(flags.Overflow).To(BeFalse())
	})

	It("should flush a product below the denormal range to zero", func() {
		// 2^-9 * 2^-6 is far below the smallest denormal.
		got, flags := fp8.Mul(fp8.MinDenormal, fp8.Float8(0x08))
		Expect(got).To(Equal(fp8.PositiveZero))
		Expect(flags.Underflow).To(BeTrue())
	})
})

var _ = Describe("Add", func() {
	It("should pass the other operand through a zero bit-unchanged", func() {
		got, _ := fp8.Add(fp8.PositiveZero, fp8.Float8(0x07))
		Expect(got).To(Equal(fp8.Float8(0x07)))

		got, _ = fp8.Add(fp8.Float8(0x05), fp8.NegativeZero)
		Expect(got).To(Equal(fp8.Float8(0x05)))
	})

	It("should take the first operand's sign when both are zero", func() {
		got, _ := fp8.Add(fp8.NegativeZero, fp8.PositiveZero)
		Expect(got).To(Equal(fp8.NegativeZero))

		got, _ = fp8.Add(fp8.PositiveZero, fp8.NegativeZero)
		Expect(got).To(Equal(fp8.PositiveZero))
	})

	It("should cancel equal magnitudes of opposite sign to +0", func() {
		got, flags := fp8.Add(fp8.Float8(0x3C), fp8.Float8(0xBC))
		Expect(got).To(Equal(fp8.PositiveZero))
		Expect(flags).To(Equal(fp8.Flags{}))
	})

	It("should add equal operands by bumping the exponent", func() {
		got, _ := fp8.Add(fp8.One, fp8.One)
		Expect(got).To(Equal(fp8.Float8(0x40)))
	})

	It("should absorb an operand smaller than half an ULP", func() {
		got, _ := fp8.Add(fp8.One, fp8.MinDenormal)
		Expect(got).To(Equal(fp8.One))
	})

	It("should round a misaligned sum half to even", func() {
		// 1.0 + 0.09375 = 1.09375 rounds up to 1.125.
		got, _ := fp8.Add(fp8.One, fp8.Float8(0x1C))
		Expect(got).To(Equal(fp8.Float8(0x39)))
	})

	It("should renormalize after subtraction", func() {
		got, _ := fp8.Add(fp8.Float8(0x40), fp8.Float8(0xB8))
		Expect(got).To(Equal(fp8.One))
	})

	It("should take the larger operand's sign on subtraction", func() {
		got, _ := fp8.Add(fp8.One, fp8.Float8(0xC0))
		Expect(got).To(Equal(fp8.Float8(0xB8)))
	})

	It("should subtract down into the denormal range", func() {
		// 2^-6 - 2^-9 = 7 denormal units.
		got, _ := fp8.Add(fp8.Float8(0x08), fp8.Float8(0x81))
		Expect(got).To(Equal(fp8.Float8(0x07)))
	})

	It("should saturate to NaN when the rounded sum leaves the range", func() {
		// 240 + 8 = 248 ties to the even significand out of range.
		got, flags := fp8.Add(fp8.MaxFinite, fp8.Float8(0x50))
		Expect(got).To(Equal(fp8.NaN))
		Expect(flags.Overflow).To(BeTrue())

		// 240 + 4 rounds back down to 240.
		got, flags = fp8.Add(fp8.MaxFinite, fp8.Float8(0x48))
		Expect(got).To(Equal(fp8.MaxFinite))
		Expect(flags.Overflow).To(BeFalse())
	})

	It("should propagate NaN operands", func() {
		got, flags := fp8.Add(fp8.NaN, fp8.One)
		Expect(got).To(Equal(fp8.NaN))
		Expect(flags.NaN).To(BeTrue())
	})
})

var _ = Describe("Unit", func() {
	var unit fp8.Unit

	It("should fold the first product into a cleared accumulator", func() {
		acc, sat := unit.Accumulate(0, uint8(fp8.One), uint8(fp8.One))
		Expect(acc).To(Equal(int64(fp8.One)))
		Expect(sat).To(BeFalse())
	})

	It("should accumulate across steps", func() {
		acc, _ := unit.Accumulate(0, uint8(fp8.One), uint8(fp8.One))
		acc, sat := unit.Accumulate(acc, uint8(fp8.One), uint8(fp8.One))
		Expect(acc).To(Equal(int64(fp8.Float8(0x40))))
		Expect(sat).To(BeFalse())
	})

	It("should flag exponent saturation from the accumulation", func() {
		// 240 + 2*4 crosses the halfway point out of the finite range.
		acc, sat := unit.Accumulate(int64(fp8.MaxFinite), 0x40, 0x48)
		Expect(fp8.Float8(acc)).To(Equal(fp8.NaN))
		Expect(sat).To(BeTrue())
	})

	It("should flag exponent saturation from the product", func() {
		acc, sat := unit.Accumulate(0, uint8(fp8.MaxFinite), 0x40)
		Expect(fp8.Float8(acc)).To(Equal(fp8.NaN))
		Expect(sat).To(BeTrue())
	})

	It("should keep a saturated accumulator at NaN without re-flagging", func() {
		acc, sat := unit.Accumulate(int64(fp8.NaN), uint8(fp8.One), uint8(fp8.One))
		Expect(fp8.Float8(acc)).To(Equal(fp8.NaN))
		Expect(sat).To(BeFalse())
	})
})
