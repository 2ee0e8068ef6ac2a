package analyzer

import "github.com/blackwell-systems/mindlens/internal/journal"

// AnalyzeWords computes mean word counts overall and per emotion. Entries
// without a recorded word count are excluded from both means but still
// counted in TotalEntries.
func AnalyzeWords(points []journal.Point) WordStats {
	stats := WordStats{
		AvgWordsByEmotion: make(map[string]float64),
		TotalEntries:      len(points),
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	total, n := 0, 0
	for _, p := range points {
		if p.WordCount <= 0 {
			continue
		}
		total += p.WordCount
		n++
		sums[p.Emotion] += p.WordCount
		counts[p.Emotion]++
	}

	if n == 0 {
		return stats
	}
	stats.AvgWordsPerEntry = round(float64(total)/float64(n), 1)
	for e, c := range counts {
		stats.AvgWordsByEmotion[e] = round(float64(sums[e])/float64(c), 1)
	}
	return stats
}
