package dialect

// Classification is the result of scoring evidence for a log.
type Classification struct {
	Kind            Kind
	Score           int
	TotalScore      int
	Confidence      float64
	RunnerUp        Kind
	RunnerUpScore   int
	ObservedSignals int
	// Ambiguous is set when the two best dialects scored the same; Kind is
	// Unknown in that case and Leader holds the first of the tied dialects.
	Ambiguous bool
	Leader    Kind
}

// Classifier scores evidence and chooses a dominant dialect.
// Callers apply their own thresholds.
type Classifier struct{}

func (Classifier) Classify(e *Evidence) Classification {
	if e == nil || len(e.hints) == 0 {
		return Classification{Kind: Unknown}
	}

	var scores [kindCount]int
	total := 0
	observed := 0
	for _, h := range e.hints {
		observed++
		if h.Score <= 0 {
			continue
		}
		if h.Dialect <= Unknown || h.Dialect >= kindCount {
			continue
		}
		scores[h.Dialect] += h.Score
		total += h.Score
	}

	bestKind := Unknown
	bestScore := 0
	runnerKind := Unknown
	runnerScore := 0
	for k := MSVC; k < kindCount; k++ {
		score := scores[k]
		if score > bestScore {
			runnerKind, runnerScore = bestKind, bestScore
			bestKind, bestScore = k, score
			continue
		}
		if score > runnerScore {
			runnerKind, runnerScore = k, score
		}
	}

	conf := 0.0
	if total > 0 {
		conf = float64(bestScore) / float64(total)
	}

	out := Classification{
		Kind:            bestKind,
		Leader:          bestKind,
		Score:           bestScore,
		TotalScore:      total,
		Confidence:      conf,
		RunnerUp:        runnerKind,
		RunnerUpScore:   runnerScore,
		ObservedSignals: observed,
	}
	if bestScore > 0 && bestScore == runnerScore {
		out.Ambiguous = true
		out.Kind = Unknown
	}
	return out
}

// Detect classifies the given log lines. Line numbers in hints are 1-based
// positions in lines.
func Detect(lines []string) Classification {
	ev := NewEvidence()
	for i, l := range lines {
		ev.Observe(l, uint32(i+1)) //nolint:gosec // bounded by caller's detect window
	}
	return Classifier{}.Classify(ev)
}
