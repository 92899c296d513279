package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cory-johannsen/montecarlo/internal/game/analysis"
	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/play"
	"github.com/cory-johannsen/montecarlo/internal/storage"
)

// report prints tables and analyses as aligned columns. limit caps the rows
// printed per section; 0 prints all.
type report struct {
	out   io.Writer
	limit int
}

func (r report) section(title string, write func(tw *tabwriter.Writer)) {
	fmt.Fprintf(r.out, "\n== %s ==\n", title)
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	write(tw)
	tw.Flush()
}

func (r report) rows(n int) int {
	if r.limit > 0 && r.limit < n {
		return r.limit
	}
	return n
}

func (r report) truncated(tw *tabwriter.Writer, shown, total int) {
	if shown < total {
		fmt.Fprintf(tw, "... %d more\t\n", total-shown)
	}
}

func writeTable[F dice.Face](r report, t play.Table[F]) {
	switch v := t.(type) {
	case play.Wide[F]:
		r.section("play (wide)", func(tw *tabwriter.Writer) {
			header := []string{"roll"}
			for _, d := range v.Dice {
				header = append(header, fmt.Sprintf("die %d", d))
			}
			fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
			n := r.rows(v.NumRolls())
			for i := 0; i < n; i++ {
				cells := []string{fmt.Sprint(v.Rolls[i])}
				for _, f := range v.Cells[i] {
					cells = append(cells, storage.FormatFace(f))
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
			}
			r.truncated(tw, n, v.NumRolls())
		})
	case play.Narrow[F]:
		r.section("play (narrow)", func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "roll\tdie\tface\t")
			n := r.rows(v.Len())
			for _, row := range v.Rows[:n] {
				fmt.Fprintf(tw, "%d\t%d\t%s\t\n", row.Roll, row.Die, storage.FormatFace(row.Face))
			}
			r.truncated(tw, n, v.Len())
		})
	}
}

func writeJackpot(r report, jackpots, rolls int) {
	r.section("jackpot", func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "rolls\tjackpots\trate\t\n")
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t\n", rolls, jackpots, float64(jackpots)/float64(rolls))
	})
}

func writeFaceCounts[F dice.Face](r report, ff analysis.FaceFrequency[F]) {
	r.section("face counts", func(tw *tabwriter.Writer) {
		header := []string{"roll"}
		for _, f := range ff.Faces {
			header = append(header, storage.FormatFace(f))
		}
		fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
		n := r.rows(len(ff.Rolls))
		for i := 0; i < n; i++ {
			cells := []string{fmt.Sprint(ff.Rolls[i])}
			for _, c := range ff.Counts[i] {
				cells = append(cells, fmt.Sprint(c))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
		}
		r.truncated(tw, n, len(ff.Rolls))
	})
}

func writeTally[F dice.Face](r report, title string, t analysis.Tally[F]) {
	r.section(title, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "faces\tcount\t")
		n := r.rows(t.Len())
		for _, e := range t.Entries[:n] {
			faces := make([]string, len(e.Faces))
			for i, f := range e.Faces {
				faces[i] = storage.FormatFace(f)
			}
			fmt.Fprintf(tw, "%s\t%d\t\n", strings.Join(faces, " "), e.Count)
		}
		r.truncated(tw, n, t.Len())
	})
}

func writeSummary[F dice.Face](r report, sums []analysis.FaceSummary[F]) {
	r.section("per-roll face statistics", func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "face\ttotal\tmean\tstddev\tmedian\tmin\tmax\t")
		for _, s := range sums {
			fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t%g\t%g\t%g\t\n",
				storage.FormatFace(s.Face), s.Total, s.Mean, s.StdDev, s.Median, s.Min, s.Max)
		}
	})
}

func writeFits(r report, fits []analysis.Fit) {
	r.section("goodness of fit", func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "die\tn\tchi2\tdf\tp\t")
		for i, f := range fits {
			fmt.Fprintf(tw, "%d\t%d\t%.3f\t%d\t%.4f\t\n", i+1, f.Observations, f.Statistic, f.DegreesOfFreedom, f.PValue)
		}
	})
}

func writeMatches(r report, name string, matches, rolls int) {
	r.section("predicate "+name, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "rolls\tmatches\trate\t")
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t\n", rolls, matches, float64(matches)/float64(rolls))
	})
}
