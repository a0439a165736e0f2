package feedback

import (
	"math"

	"github.com/raunak23427/mutual-skill-sync/internal/entity"
)

// Summary aggregates a list of ratings. Distribution always has keys 1..5.
type Summary struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

// Summarize computes the average rounded to two decimals and the per-star
// histogram. Ratings outside 1..5 are ignored.
func Summarize(ratings []int) Summary {
	s := Summary{Distribution: make(map[int]int, entity.MaxRating)}
	for star := entity.MinRating; star <= entity.MaxRating; star++ {
		s.Distribution[star] = 0
	}

	total := 0
	for _, r := range ratings {
		if r < entity.MinRating || r > entity.MaxRating {
			continue
		}
		s.Distribution[r]++
		s.Count++
		total += r
	}

	if s.Count > 0 {
		s.Average = round2(float64(total) / float64(s.Count))
	}
	return s
}

func averageRating(ratings []int) float64 {
	return Summarize(ratings).Average
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
