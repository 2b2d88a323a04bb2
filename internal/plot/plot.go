// Package plot renders query results to PNG chart files.
//
// The renderer itself (gonum/plot) is an opaque collaborator; this package
// owns the contract around it: validating the requested chart kind and the
// presence of the x/y columns, naming the artifact, and creating the output
// directory. Error texts are user-facing and relayed to the hosted agent.
package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Kinds supported by Render. Anything else is rejected with a structured
// error naming the invalid kind.
const (
	KindBar     = "bar"
	KindLine    = "line"
	KindScatter = "scatter"
)

// Render draws a chart of y against x from the given query result and writes
// it as a PNG under outDir, which is created if absent. It returns the path
// of the written file.
//
// Artifact names carry a second-resolution timestamp plus a short random
// suffix, so two plots requested within the same second cannot overwrite each
// other.
func Render(columns []string, records []map[string]any, x, y, kind, outDir string) (string, error) {
	if !hasColumn(columns, x) || !hasColumn(columns, y) {
		return "", fmt.Errorf("Colonnes '%s' ou '%s' introuvables.", x, y)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s plot de %s en fonction de %s", capitalize(kind), y, x)
	p.X.Label.Text = x
	p.Y.Label.Text = y

	switch kind {
	case KindBar:
		if err := addBars(p, records, x, y); err != nil {
			return "", err
		}
	case KindLine:
		if err := addXY(p, records, x, y, false); err != nil {
			return "", err
		}
	case KindScatter:
		if err := addXY(p, records, x, y, true); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("Type de graphique '%s' non supporté.", kind)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_plot_%s_%s.png", kind, timestamp, uuid.NewString()[:8])
	path := filepath.Join(outDir, filename)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save plot: %w", err)
	}
	return path, nil
}

func addBars(p *plot.Plot, records []map[string]any, x, y string) error {
	values := make(plotter.Values, len(records))
	labels := make([]string, len(records))
	for i, rec := range records {
		values[i] = toFloat(rec[y])
		labels[i] = fmt.Sprint(rec[x])
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)
	return nil
}

// addXY plots numeric x/y pairs. Non-numeric x values fall back to the row
// index with the values as nominal axis labels, so categorical axes still
// plot instead of erroring.
func addXY(p *plot.Plot, records []map[string]any, x, y string, scatter bool) error {
	xys := make(plotter.XYs, len(records))
	numericX := true
	for _, rec := range records {
		if _, ok := tryFloat(rec[x]); !ok {
			numericX = false
			break
		}
	}

	var labels []string
	for i, rec := range records {
		if numericX {
			xys[i].X = toFloat(rec[x])
		} else {
			xys[i].X = float64(i)
			labels = append(labels, fmt.Sprint(rec[x]))
		}
		xys[i].Y = toFloat(rec[y])
	}

	if scatter {
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("build scatter plot: %w", err)
		}
		p.Add(s)
	} else {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("build line plot: %w", err)
		}
		p.Add(l)
	}
	if !numericX {
		p.NominalX(labels...)
	}
	return nil
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func tryFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) float64 {
	f, _ := tryFloat(v)
	return f
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
