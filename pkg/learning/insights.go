package learning

import (
	"context"
	"sort"
)

// ReasonCount is one failure reason with its occurrence count.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// FeedbackAggregate summarizes user feedback across records.
type FeedbackAggregate struct {
	// Count is the number of records carrying feedback.
	Count int `json:"count"`

	// HelpfulCount is how many of those were marked helpful.
	HelpfulCount int `json:"helpful_count"`

	// AverageRating is the mean of non-zero ratings; 0 when unrated.
	AverageRating float64 `json:"average_rating"`
}

// Insights is the derived view over the learning trace.
type Insights struct {
	TotalRecords   int     `json:"total_records"`
	MeanConfidence float64 `json:"mean_confidence"`
	SuccessRate    float64 `json:"success_rate"`

	// TopFailureReasons lists the five most frequent failure reasons,
	// most frequent first.
	TopFailureReasons []ReasonCount `json:"top_failure_reasons,omitempty"`

	Feedback FeedbackAggregate `json:"feedback"`
}

// topReasonCount caps the failure reason leaderboard.
const topReasonCount = 5

// ComputeInsights derives aggregate insights from a store's full trace.
func ComputeInsights(ctx context.Context, store Store) (*Insights, error) {
	records, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	return insightsFrom(records), nil
}

func insightsFrom(records []*Record) *Insights {
	out := &Insights{TotalRecords: len(records)}
	if len(records) == 0 {
		return out
	}

	var confidenceSum float64
	successes := 0
	reasons := make(map[string]int)
	ratingSum, ratingCount := 0, 0

	for _, rec := range records {
		confidenceSum += rec.Confidence
		if rec.Success {
			successes++
		} else if rec.FailureReason != "" {
			reasons[rec.FailureReason]++
		}
		if rec.Feedback != nil {
			out.Feedback.Count++
			if rec.Feedback.Helpful {
				out.Feedback.HelpfulCount++
			}
			if rec.Feedback.Rating > 0 {
				ratingSum += rec.Feedback.Rating
				ratingCount++
			}
		}
	}

	out.MeanConfidence = confidenceSum / float64(len(records))
	out.SuccessRate = float64(successes) / float64(len(records))
	if ratingCount > 0 {
		out.Feedback.AverageRating = float64(ratingSum) / float64(ratingCount)
	}

	counts := make([]ReasonCount, 0, len(reasons))
	for reason, count := range reasons {
		counts = append(counts, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Reason < counts[j].Reason
	})
	if len(counts) > topReasonCount {
		counts = counts[:topReasonCount]
	}
	out.TopFailureReasons = counts
	return out
}
