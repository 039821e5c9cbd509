package render

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/kevinwood15/noshow/internal/aggregate"
	"github.com/kevinwood15/noshow/internal/dataset"
	"github.com/kevinwood15/noshow/internal/utils"
)

// ErrNoData is returned when a chart would have nothing to draw.
var ErrNoData = errors.New("nothing to plot")

// Options controls where and how charts are written.
type Options struct {
	Dir      string
	Format   string // png|svg|pdf
	WidthCm  float64
	HeightCm float64
	Bins     int
}

// Renderer writes charts into one output directory and remembers what it wrote.
type Renderer struct {
	opt     Options
	log     zerolog.Logger
	written []string
}

// New creates the output directory and returns a Renderer for it.
func New(opt Options, log zerolog.Logger) (*Renderer, error) {
	if opt.Format == "" {
		opt.Format = "png"
	}
	if opt.WidthCm <= 0 {
		opt.WidthCm = 20
	}
	if opt.HeightCm <= 0 {
		opt.HeightCm = 14
	}
	if opt.Bins <= 0 {
		opt.Bins = 10
	}
	if err := utils.EnsureDir(opt.Dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Renderer{opt: opt, log: log}, nil
}

// Written lists the chart files produced so far, in order.
func (r *Renderer) Written() []string { return append([]string(nil), r.written...) }

func (r *Renderer) path(name string) string {
	return filepath.Join(r.opt.Dir, name+"."+r.opt.Format)
}

func (r *Renderer) size() (vg.Length, vg.Length) {
	return vg.Length(r.opt.WidthCm) * vg.Centimeter, vg.Length(r.opt.HeightCm) * vg.Centimeter
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	path := r.path(name)
	w, h := r.size()
	if err := p.Save(w, h, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	r.done(path)
	return path, nil
}

// saveGrid lays plots out in a grid on one canvas. Nil cells are left blank.
func (r *Renderer) saveGrid(grid [][]*plot.Plot, w, h vg.Length, name string) (string, error) {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	c, err := draw.NewFormattedCanvas(w, h, r.opt.Format)
	if err != nil {
		return "", fmt.Errorf("canvas: %w", err)
	}
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Points(4), PadBottom: vg.Points(4),
		PadLeft: vg.Points(4), PadRight: vg.Points(4),
	}
	canvases := plot.Align(grid, tiles, draw.New(c))
	for i := range grid {
		for j, p := range grid[i] {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}
	path := r.path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	r.done(path)
	return path, nil
}

func (r *Renderer) done(path string) {
	r.written = append(r.written, path)
	r.log.Debug().Str("file", path).Msg("chart written")
}

// HistogramMatrix draws one histogram per numeric column of t, tiled in a
// near-square grid. Missing values are dropped and columns with no values are
// skipped.
func (r *Renderer) HistogramMatrix(t *dataset.Table, name string) (string, error) {
	types := t.Types()
	var plots []*plot.Plot
	for i, col := range t.Names() {
		if types[i] != series.Int && types[i] != series.Float {
			continue
		}
		s, err := t.Column(col)
		if err != nil {
			return "", err
		}
		vals := finite(s.Float())
		if len(vals) == 0 {
			r.log.Debug().Str("column", col).Msg("histogram skipped: no values")
			continue
		}
		p := plot.New()
		p.Title.Text = col
		h, err := plotter.NewHist(plotter.Values(vals), r.opt.Bins)
		if err != nil {
			return "", fmt.Errorf("histogram %s: %w", col, err)
		}
		h.FillColor = plotutil.Color(0)
		p.Add(h)
		plots = append(plots, p)
	}
	if len(plots) == 0 {
		return "", fmt.Errorf("histogram matrix: %w", ErrNoData)
	}
	cols := int(math.Ceil(math.Sqrt(float64(len(plots)))))
	rows := (len(plots) + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
		for j := range grid[i] {
			if k := i*cols + j; k < len(plots) {
				grid[i][j] = plots[k]
			}
		}
	}
	w, h := r.size()
	scale := vg.Length(math.Max(1, float64(cols)/2))
	return r.saveGrid(grid, w*scale, h*scale, name)
}

// BarSpec describes one categorical bar chart.
type BarSpec struct {
	Name   string // file base name
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
}

// BarChart draws spec. An undefined (NaN) value is drawn as a zero-height bar
// whose label is suffixed with "(n/a)".
func (r *Renderer) BarChart(spec BarSpec) (string, error) {
	if len(spec.Values) == 0 || len(spec.Values) != len(spec.Labels) {
		return "", fmt.Errorf("bar chart %s: %d labels for %d values: %w", spec.Name, len(spec.Labels), len(spec.Values), ErrNoData)
	}
	vals := make(plotter.Values, len(spec.Values))
	labels := make([]string, len(spec.Labels))
	for i, v := range spec.Values {
		labels[i] = spec.Labels[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			labels[i] += " (n/a)"
			continue
		}
		vals[i] = v
	}
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	w, _ := r.size()
	bars, err := plotter.NewBarChart(vals, w/vg.Length(2*len(vals)+1))
	if err != nil {
		return "", fmt.Errorf("bar chart %s: %w", spec.Name, err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	p.Y.Min = 0
	return r.save(p, spec.Name)
}

// PairedBars writes the likelihood and count charts for one grouping and
// returns both paths.
func (r *Renderer) PairedBars(name, subject, xlabel string, stats []aggregate.Stat) ([]string, error) {
	labels := make([]string, len(stats))
	means := make([]float64, len(stats))
	counts := make([]float64, len(stats))
	for i, st := range stats {
		labels[i] = st.Label
		means[i] = st.Mean
		counts[i] = float64(st.Count)
	}
	likely, err := r.BarChart(BarSpec{
		Name:   name + "_likelihood",
		Title:  "Likelihood of No Show Appointments by " + subject,
		XLabel: xlabel,
		YLabel: "Likelihood of No Show",
		Labels: labels,
		Values: means,
	})
	if err != nil {
		return nil, err
	}
	count, err := r.BarChart(BarSpec{
		Name:   name + "_count",
		Title:  "Count of Appointments by " + subject,
		XLabel: xlabel,
		YLabel: "Appointments",
		Labels: labels,
		Values: counts,
	})
	if err != nil {
		return nil, err
	}
	return []string{likely, count}, nil
}

// BoxPlotAgeByGender draws age by gender, one tile per outcome facet. A gender
// with no ages in a facet gets no box.
func (r *Renderer) BoxPlotAgeByGender(facets []aggregate.AgeFacet, name string) (string, error) {
	if len(facets) == 0 {
		return "", fmt.Errorf("box plot: %w", ErrNoData)
	}
	row := make([]*plot.Plot, len(facets))
	w, h := r.size()
	boxWidth := w / vg.Length(4*len(facets)+1)
	for i, f := range facets {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("no_show = %d", f.Outcome)
		p.X.Label.Text = "male"
		p.Y.Label.Text = "age"
		groups := []struct {
			label string
			ages  []float64
		}{
			{"Female (0)", f.Female},
			{"Male (1)", f.Male},
		}
		var names []string
		for j, g := range groups {
			names = append(names, g.label)
			if len(g.ages) == 0 {
				r.log.Debug().Int("no_show", f.Outcome).Str("group", g.label).Msg("box skipped: no ages")
				continue
			}
			b, err := plotter.NewBoxPlot(boxWidth, float64(j), plotter.Values(g.ages))
			if err != nil {
				return "", fmt.Errorf("box plot %s: %w", strings.ToLower(g.label), err)
			}
			b.FillColor = plotutil.Color(j)
			p.Add(b)
		}
		p.NominalX(names...)
		row[i] = p
	}
	return r.saveGrid([][]*plot.Plot{row}, w, h, name)
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}
