package corpus

import (
	"bufio"
	"io"
	"strconv"

	"github.com/cognicore/sensekit/pkg/sensekit/classifier"
)

// WriteLibSVM writes one "target index:value ..." line per instance.
// Indices are written 1-based as LibSVM tools expect; unlabelled instances
// get target -1.
func WriteLibSVM(w io.Writer, instances []classifier.SparseInstance) error {
	bw := bufio.NewWriter(w)
	for _, x := range instances {
		bw.WriteString(strconv.Itoa(x.Target()))
		x.Each(func(i int, v float64) {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(i + 1))
			bw.WriteByte(':')
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		})
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
