package aggregate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// targetFocusMinutes is the session length that earns the full focus score.
const targetFocusMinutes = 25

// SlotProductivity is one (time slot, weekday) cell of the heatmap.
type SlotProductivity struct {
	TimeSlot            string `json:"timeSlot"`
	DayOfWeek           int    `json:"dayOfWeek"`
	TotalSessions       int    `json:"totalSessions"`
	CompletedSessions   int    `json:"completedSessions"`
	CompletionRate      int    `json:"completionRate"`
	AverageFocusMinutes int    `json:"averageFocusMinutes"`
	ProductivityScore   int    `json:"productivityScore"`
}

// GoldenTime is the time slot with the best average score across weekdays.
type GoldenTime struct {
	TimeSlot     string  `json:"timeSlot"`
	AverageScore float64 `json:"averageScore"`
}

// Heatmap is the productivity heatmap of recent work sessions.
type Heatmap struct {
	Weeks                int                `json:"weeks"`
	TimeSlotProductivity []SlotProductivity `json:"timeSlotProductivity"`
	GoldenTime           *GoldenTime        `json:"goldenTime"`
}

// TimeSlot returns the two-hour slot key for an hour of day, e.g. 14 -> "14-16".
func TimeSlot(hour int) string {
	start := hour / 2 * 2
	return fmt.Sprintf("%02d-%02d", start, start+2)
}

// ProductivityScore weighs completion rate against average focus length.
func ProductivityScore(completionRate, averageFocusMinutes int) int {
	focus := min(100, 100*float64(averageFocusMinutes)/targetFocusMinutes)
	return int(model.RoundHalfUp(0.7*float64(completionRate) + 0.3*focus))
}

type cellKey struct {
	slot string
	dow  int
}

type cellAcc struct {
	total, completed, completedMinutes int
}

// BuildHeatmap folds work-mode sessions into slot x weekday cells. Hours and
// weekdays are taken in loc. Cells are ordered by slot then weekday; golden
// time ties go to the earliest slot.
func BuildHeatmap(weeks int, sessions []model.PomodoroSession, loc *time.Location) Heatmap {
	cells := make(map[cellKey]*cellAcc)
	for _, s := range sessions {
		if s.Mode != model.ModeWork {
			continue
		}
		started := s.StartedAt.In(loc)
		k := cellKey{slot: TimeSlot(started.Hour()), dow: int(started.Weekday())}
		acc, ok := cells[k]
		if !ok {
			acc = &cellAcc{}
			cells[k] = acc
		}
		acc.total++
		if s.CompletionStatus == model.StatusCompleted {
			acc.completed++
			acc.completedMinutes += s.DurationMinutes
		}
	}

	heatmap := Heatmap{Weeks: weeks, TimeSlotProductivity: make([]SlotProductivity, 0, len(cells))}
	for k, acc := range cells {
		rate := int(model.RoundHalfUp(100 * float64(acc.completed) / float64(acc.total)))
		focus := 0
		if acc.completed > 0 {
			focus = int(model.RoundHalfUp(float64(acc.completedMinutes) / float64(acc.completed)))
		}
		heatmap.TimeSlotProductivity = append(heatmap.TimeSlotProductivity, SlotProductivity{
			TimeSlot:            k.slot,
			DayOfWeek:           k.dow,
			TotalSessions:       acc.total,
			CompletedSessions:   acc.completed,
			CompletionRate:      rate,
			AverageFocusMinutes: focus,
			ProductivityScore:   ProductivityScore(rate, focus),
		})
	}
	slices.SortFunc(heatmap.TimeSlotProductivity, func(a, b SlotProductivity) int {
		if a.TimeSlot != b.TimeSlot {
			if a.TimeSlot < b.TimeSlot {
				return -1
			}
			return 1
		}
		return a.DayOfWeek - b.DayOfWeek
	})

	heatmap.GoldenTime = goldenTime(heatmap.TimeSlotProductivity)
	return heatmap
}

// goldenTime expects cells sorted by slot, so the first strictly greater
// average wins ties for the earliest slot.
func goldenTime(cells []SlotProductivity) *GoldenTime {
	var best *GoldenTime
	for i := 0; i < len(cells); {
		j, sum := i, 0
		for j < len(cells) && cells[j].TimeSlot == cells[i].TimeSlot {
			sum += cells[j].ProductivityScore
			j++
		}
		avg := float64(sum) / float64(j-i)
		if best == nil || avg > best.AverageScore {
			best = &GoldenTime{TimeSlot: cells[i].TimeSlot, AverageScore: avg}
		}
		i = j
	}
	if best != nil {
		best.AverageScore = model.RoundTo(best.AverageScore, 1)
	}
	return best
}

// ComputeProductivityHeatmap covers sessions started in the last `weeks` weeks.
func (e *Engine) ComputeProductivityHeatmap(ctx context.Context, userID string, weeks int) (Heatmap, error) {
	if weeks < 1 {
		return Heatmap{}, model.Errorf(model.ErrValidation, "weeks must be positive")
	}
	since := e.opts.Now().AddDate(0, 0, -7*weeks)
	sessions, err := e.source.ListSessions(ctx, userID, since)
	if err != nil {
		return Heatmap{}, fmt.Errorf("list sessions: %w", err)
	}
	e.logger.Debug("heatmap computed", "user_id", userID, "weeks", weeks, "sessions", len(sessions))
	return BuildHeatmap(weeks, sessions, e.opts.Location), nil
}
