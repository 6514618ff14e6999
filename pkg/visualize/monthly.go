package visualize

import (
	"fmt"
	"io"

	"github.com/spencer-p/sundash/pkg/report"
)

const (
	width  = 1200
	height = 300

	// Room at the bottom for month labels.
	labelHeight = 30
	barGap      = 10
)

// Monthly draws a year of irradiation as an SVG bar chart.
type Monthly struct {
	report report.Report
}

func NewMonthly(r report.Report) *Monthly {
	return &Monthly{report: r}
}

func (img *Monthly) Encode(w io.Writer) (int, error) {
	var n int
	var err error
	io := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil {
			err = nexterr
		}
	}

	io(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height))

	series := img.report.Series
	barWidth := width/len(series) - barGap
	peak := img.report.Summary.Max

	for i, s := range series {
		x := i*(barWidth+barGap) + barGap/2
		barHeight := img.valueToHeight(s.Irradiation, peak)
		class := "month"
		if peak > 0 && s.Irradiation == peak {
			class = "month peak"
		}
		io(fmt.Fprintf(w, `<rect class="%s" fill="#f4a261" x="%d" y="%d" width="%d" height="%d"><title>%s</title></rect>`,
			class,
			x, height-labelHeight-barHeight,
			barWidth, barHeight,
			s.String()))
		io(fmt.Fprintf(w, `<text class="label" x="%d" y="%d" text-anchor="middle">%s</text>`,
			x+barWidth/2, height-labelHeight/3,
			s.Month.String()[:3]))
	}

	// Mark the annual mean across the whole chart.
	meanY := height - labelHeight - img.valueToHeight(img.report.Summary.Mean, peak)
	io(fmt.Fprintf(w, `<line class="mean" stroke="#264653" stroke-dasharray="8 4" x1="0" y1="%d" x2="%d" y2="%d"/>`,
		meanY, width, meanY))

	io(fmt.Fprintf(w, `</svg>`))

	return n, err
}

// valueToHeight scales v to the drawable height with peak at the top. A year
// with no sun at all draws nothing.
func (img *Monthly) valueToHeight(v, peak float64) int {
	if peak <= 0 {
		return 0
	}
	return int(v / peak * (height - labelHeight))
}
