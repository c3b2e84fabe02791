// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"github.com/jeranaias/gradebook-tui/internal/model"
)

// Summary is a locally derived progress snapshot for one student.
type Summary struct {
	TotalAssignments     int
	CompletedAssignments int
	AverageScore         float64
}

// Summarize derives a summary from raw grades. An assignment counts as
// completed when a grade record exists for it; the average is over
// graded work only, and zero when nothing is graded yet.
func Summarize(grades []model.GradeDetails, totalAssignments int) Summary {
	s := Summary{
		TotalAssignments:     totalAssignments,
		CompletedAssignments: len(grades),
	}

	var sum float64
	for _, g := range grades {
		sum += g.Score
	}
	if len(grades) > 0 {
		s.AverageScore = sum / float64(len(grades))
	}
	return s
}

// CompletionPercent returns completion as a 0-100 integer for progress
// bars. Zero total reads as zero percent, not a division crash.
func (s Summary) CompletionPercent() int {
	if s.TotalAssignments == 0 {
		return 0
	}
	return s.CompletedAssignments * 100 / s.TotalAssignments
}
