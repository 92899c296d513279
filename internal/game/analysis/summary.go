package analysis

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

// FaceSummary describes how often one face appeared per roll across a play.
type FaceSummary[F dice.Face] struct {
	Face   F
	Total  int
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

// Summarize computes descriptive statistics of each face's per-roll count.
// StdDev is the population standard deviation.
//
// Postcondition: One summary per face of FaceCounts, in the same order;
// returns ErrNoPlayRecorded before the first play.
func (a *Analyzer[F]) Summarize() ([]FaceSummary[F], error) {
	ff, err := a.FaceCounts()
	if err != nil {
		return nil, err
	}

	out := make([]FaceSummary[F], len(ff.Faces))
	for k, face := range ff.Faces {
		data := make(stats.Float64Data, len(ff.Counts))
		total := 0
		for i, row := range ff.Counts {
			data[i] = float64(row[k])
			total += row[k]
		}
		s, err := summarizeColumn[F](data)
		if err != nil {
			return nil, fmt.Errorf("summarizing face %v: %w", face, err)
		}
		s.Face = face
		s.Total = total
		out[k] = s
	}
	return out, nil
}

func summarizeColumn[F dice.Face](data stats.Float64Data) (FaceSummary[F], error) {
	var s FaceSummary[F]
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	return s, nil
}
