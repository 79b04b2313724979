package fp8

import "testing"

// Every non-NaN pattern must survive a decompose/pack round trip with
// its bits intact, and decompose must keep the significand on the
// 4-bit grid with the exponent inside the representable range.
func TestDecomposePackIdentity(t *testing.T) {
	for b := 0; b < 256; b++ {
		f := Float8(b)
		if f.IsNaN() {
			continue
		}
		neg, exp, sig := f.decompose()

		if sig > 0x0F {
			t.Fatalf("decompose(%#02x): significand %#x exceeds 4 bits", b, sig)
		}
		if exp < DenormExponent || exp > MaxExponent {
			t.Fatalf("decompose(%#02x): exponent %d out of range", b, exp)
		}
		if neg != f.IsNegative() {
			t.Fatalf("decompose(%#02x): sign %v disagrees with IsNegative", b, neg)
		}
		if f.IsDenormal() || f.IsZero() {
			if sig >= 8 {
				t.Fatalf("decompose(%#02x): denormal significand %#x has implicit bit set", b, sig)
			}
		} else if sig < 8 {
			t.Fatalf("decompose(%#02x): normal significand %#x lost implicit bit", b, sig)
		}

		if got := pack(neg, exp, sig); got != f {
			t.Fatalf("pack(decompose(%#02x)) = %#02x", b, uint8(got))
		}
	}
}
