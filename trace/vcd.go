// Package trace writes value-change-dump waveforms of the compute
// core's control lines and per-lane status, one timestep per recorded
// step.
package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/macgrid/grid"
)

type signal struct {
	name string
	id   string
	last byte
}

// Writer emits a VCD stream. Each Record call becomes one timestep
// carrying the control triple, every lane's done and overflow flag,
// and the array-level reductions. The zero value is not usable;
// construct with NewWriter.
type Writer struct {
	out  *bufio.Writer
	rows int
	cols int

	signals []signal
	time    uint64
	started bool
	err     error
}

// NewWriter returns a Writer tracing a rows×cols grid into out. The
// header is written lazily on the first Record.
func NewWriter(out io.Writer, rows, cols int) *Writer {
	w := &Writer{
		out:  bufio.NewWriter(out),
		rows: rows,
		cols: cols,
	}

	names := []string{
		"clear_acc",
		"data_valid",
		"read_enable",
		"computation_done",
		"overflow_detected",
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			names = append(names,
				fmt.Sprintf("done_%d_%d", i, j),
				fmt.Sprintf("ovf_%d_%d", i, j))
		}
	}
	for n, name := range names {
		w.signals = append(w.signals, signal{name: name, id: identifier(n)})
	}
	return w
}

// identifier returns the n-th VCD short identifier, base-94 over the
// printable characters starting at '!'.
func identifier(n int) string {
	var id []byte
	for {
		id = append(id, byte('!'+n%94))
		n /= 94
		if n == 0 {
			return string(id)
		}
	}
}

func (w *Writer) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.out, format, args...); err != nil {
		w.err = err
	}
}

// controlSignals is the number of array-level signals preceding the
// per-lane pairs in the signal table.
const controlSignals = 5

func (w *Writer) writeHeader() {
	w.printf("$timescale 1 ns $end\n")
	w.printf("$scope module macgrid $end\n")
	for _, s := range w.signals[:controlSignals] {
		w.printf("$var wire 1 %s %s $end\n", s.id, s.name)
	}
	w.printf("$scope module lanes $end\n")
	for _, s := range w.signals[controlSignals:] {
		w.printf("$var wire 1 %s %s $end\n", s.id, s.name)
	}
	w.printf("$upscope $end\n")
	w.printf("$upscope $end\n")
	w.printf("$enddefinitions $end\n")
}

// Record appends one timestep. done and overflow are the per-lane
// status matrices; the array-level reductions are derived here so the
// trace stays consistent with them by construction.
func (w *Writer) Record(ctl grid.Control, done, overflow [][]bool) error {
	if w.err != nil {
		return w.err
	}
	if len(done) != w.rows || len(overflow) != w.rows {
		return fmt.Errorf("status has %d rows, want %d", len(done), w.rows)
	}

	values := make([]byte, len(w.signals))
	values[0] = bit(ctl.ClearAcc)
	values[1] = bit(ctl.DataValid)
	values[2] = bit(ctl.ReadEnable)

	allDone := true
	anyOvf := false
	idx := controlSignals
	for i := 0; i < w.rows; i++ {
		if len(done[i]) != w.cols || len(overflow[i]) != w.cols {
			return fmt.Errorf("status row %d has %d lanes, want %d",
				i, len(done[i]), w.cols)
		}
		for j := 0; j < w.cols; j++ {
			values[idx] = bit(done[i][j])
			values[idx+1] = bit(overflow[i][j])
			idx += 2
			allDone = allDone && done[i][j]
			anyOvf = anyOvf || overflow[i][j]
		}
	}
	values[3] = bit(allDone)
	values[4] = bit(anyOvf)

	if !w.started {
		w.writeHeader()
		w.started = true
	}

	// Zero-valued last bytes never match '0' or '1', so the first
	// timestep dumps every signal; later timesteps carry changes only.
	w.printf("#%d\n", w.time)
	for i := range w.signals {
		if values[i] != w.signals[i].last {
			w.printf("%c%s\n", values[i], w.signals[i].id)
			w.signals[i].last = values[i]
		}
	}
	w.time++

	return w.err
}

// Close flushes the stream. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	return w.out.Flush()
}

func bit(b bool) byte {
	if b {
		return '1'
	}
	return '0'
}
