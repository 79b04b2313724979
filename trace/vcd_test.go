package trace_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/macgrid/grid"
	"github.com/sarchlab/macgrid/trace"
)

func TestTrace(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Trace Suite")
}

var _ = Describe("Writer", func() {
	var (
		buf    bytes.Buffer
		accept grid.Control
		clear  grid.Control
	)

	BeforeEach(func() {
		buf.Reset()
		accept = grid.Control{DataValid: true, ReadEnable: true}
		clear = grid.Control{ClearAcc: true}
	})

	It("should emit a full dump then changes only", func() {
		w := trace.NewWriter(&buf, 1, 1)

		done := [][]bool{{true}}
		ovf := [][]bool{{false}}
		Expect(w.Record(accept, done, ovf)).To(Succeed())
		Expect(w.Record(accept, done, ovf)).To(Succeed())
		Expect(w.Record(clear, [][]bool{{false}}, ovf)).To(Succeed())
		Expect(w.Close()).To(Succeed())

		Expect(buf.String()).To(Equal(`$timescale 1 ns $end
$scope module macgrid $end
$var wire 1 ! clear_acc $end
$var wire 1 " data_valid $end
$var wire 1 # read_enable $end
$var wire 1 $ computation_done $end
$var wire 1 % overflow_detected $end
$scope module lanes $end
$var wire 1 & done_0_0 $end
$var wire 1 ' ovf_0_0 $end
$upscope $end
$upscope $end
$enddefinitions $end
#0
0!
1"
1#
1$
0%
1&
0'
#1
#2
1!
0"
0#
0$
0&
`))
	})

	It("should reduce lane status into the array-level signals", func() {
		w := trace.NewWriter(&buf, 2, 2)

		done := [][]bool{{true, true}, {true, false}}
		ovf := [][]bool{{false, true}, {false, false}}
		Expect(w.Record(accept, done, ovf)).To(Succeed())
		Expect(w.Close()).To(Succeed())

		lines := strings.Split(buf.String(), "\n")
		Expect(lines).To(ContainElement("0$"))
		Expect(lines).To(ContainElement("1%"))
	})

	It("should keep identifiers unique past the single-character range", func() {
		w := trace.NewWriter(&buf, 7, 7)

		done := make([][]bool, 7)
		ovf := make([][]bool, 7)
		for i := range done {
			done[i] = make([]bool, 7)
			ovf[i] = make([]bool, 7)
		}
		Expect(w.Record(accept, done, ovf)).To(Succeed())
		Expect(w.Close()).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("$var wire 1 ~ done_6_2 $end"))
		Expect(out).To(ContainSubstring("$var wire 1 !\" ovf_6_2 $end"))
	})

	It("should reject status matrices of the wrong shape", func() {
		w := trace.NewWriter(&buf, 2, 2)

		err := w.Record(accept, [][]bool{{true}}, [][]bool{{false}})
		Expect(err).To(HaveOccurred())

		err = w.Record(accept,
			[][]bool{{true, true}, {true}},
			[][]bool{{false, false}, {false, false}})
		Expect(err).To(HaveOccurred())
	})

	It("should count one timestep per record", func() {
		w := trace.NewWriter(&buf, 1, 1)

		done := [][]bool{{false}}
		ovf := [][]bool{{false}}
		for i := 0; i < 4; i++ {
			Expect(w.Record(accept, done, ovf)).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("#3"))
		Expect(buf.String()).NotTo(ContainSubstring("#4"))
	})
})
