package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.yaml.in/yaml/v3"
	"golang.org/x/term"

	"github.com/okian/strain/internal/domain/difficulty"
	"github.com/okian/strain/internal/domain/model"
)

// wideTable is the terminal width from which every skill gets a column.
const wideTable = 110

// compactSkills are shown on narrow terminals.
var compactSkills = []string{
	difficulty.SkillAim, difficulty.SkillSpeed,
	difficulty.SkillStamina, difficulty.SkillRhythmComplexity,
}

type report struct {
	RankBy  string        `yaml:"rank_by"`
	Ranking []model.Entry `yaml:"ranking"`
	Charts  []chartReport `yaml:"charts"`
}

type chartReport struct {
	ChartID    string                 `yaml:"chart_id"`
	Title      string                 `yaml:"title,omitempty"`
	Error      string                 `yaml:"error,omitempty"`
	TookMs     float64                `yaml:"took_ms"`
	Attributes *difficulty.Attributes `yaml:"attributes,omitempty"`
}

func newReport(rankBy string, top []model.Entry, results []model.Result, peaks bool) *report {
	rep := &report{RankBy: rankBy, Ranking: top, Charts: make([]chartReport, 0, len(results))}
	for i := range results {
		r := &results[i]
		cr := chartReport{
			ChartID: r.ChartID,
			Title:   r.Title,
			TookMs:  float64(r.Duration.Microseconds()) / 1000,
		}
		if r.Failed() {
			cr.Error = r.Err.Error()
		} else {
			attrs := r.Attributes
			if !peaks {
				attrs.Peaks = nil
			}
			cr.Attributes = &attrs
		}
		rep.Charts = append(rep.Charts, cr)
	}
	return rep
}

func (r *report) writeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// writeTable prints the ranking and, with all set, every rated chart.
// Terminals narrower than wideTable get the compact skill set.
func (r *report) writeTable(w io.Writer, width int, all bool) error {
	skills := difficulty.SkillNames
	if width > 0 && width < wideTable {
		skills = compactSkills
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "RANK\tCHART\t%s\t\n", strings.ToUpper(r.RankBy))
	for _, e := range r.Ranking {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t\n", e.Rank, shorten(e.ChartID, 40), e.Rating)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !all {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"CHART", "MODS", "OBJECTS"}
	for _, s := range skills {
		header = append(header, strings.ToUpper(s))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, c := range r.Charts {
		if c.Attributes == nil {
			fmt.Fprintf(tw, "%s\t-\t-\terror: %s\t\n", shorten(c.ChartID, 40), c.Error)
			continue
		}
		row := []string{shorten(c.ChartID, 40), c.Attributes.Mods.String(), fmt.Sprint(c.Attributes.ObjectCount)}
		for _, s := range skills {
			v, _ := c.Attributes.Rating(s)
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}

// terminalWidth returns the column count when w is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
