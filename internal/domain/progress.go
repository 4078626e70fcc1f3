package domain

import (
	"sort"
	"strings"
	"time"
)

// DayCount is the number of workouts started on a weekday.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// PersonalBest is the heaviest logged set for an exercise.
type PersonalBest struct {
	Exercise   string    `json:"exercise"`
	Weight     float64   `json:"weight"`
	Reps       int       `json:"reps"`
	AchievedAt time.Time `json:"achievedAt"`
}

// Progress aggregates a user's workout history.
type Progress struct {
	TotalWorkouts      int            `json:"totalWorkouts"`
	TotalDuration      int            `json:"totalDuration"`
	TotalVolume        float64        `json:"totalVolume"`
	CompletedExercises int            `json:"completedExercises"`
	WorkoutsThisWeek   int            `json:"workoutsThisWeek"`
	ByDayOfWeek        []DayCount     `json:"byDayOfWeek"`
	PersonalBests      []PersonalBest `json:"personalBests"`
}

// Summarize computes totals, the weekday histogram and personal bests. Weeks start on Sunday
// (UTC) relative to now.
func Summarize(workouts []Workout, now time.Time) Progress {
	var days [7]int
	bests := map[string]PersonalBest{}
	weekStart := startOfWeek(now.UTC())

	p := Progress{TotalWorkouts: len(workouts)}
	for _, w := range workouts {
		p.TotalDuration += w.Duration
		started := w.StartTime.UTC()
		days[started.Weekday()]++
		if !started.Before(weekStart) && started.Before(weekStart.AddDate(0, 0, 7)) {
			p.WorkoutsThisWeek++
		}

		for _, ex := range w.Exercises {
			if ex.Completed {
				p.CompletedExercises++
			}
			if ex.ExerciseType != ExerciseStrength || ex.Weight == nil {
				continue
			}
			sets, reps := intOr(ex.Sets, 1), intOr(ex.Reps, 0)
			p.TotalVolume += float64(sets*reps) * *ex.Weight

			key := strings.ToLower(strings.TrimSpace(ex.Name))
			current, seen := bests[key]
			if !seen || *ex.Weight > current.Weight || (*ex.Weight == current.Weight && reps > current.Reps) {
				bests[key] = PersonalBest{Exercise: ex.Name, Weight: *ex.Weight, Reps: reps, AchievedAt: started}
			}
		}
	}

	p.ByDayOfWeek = make([]DayCount, 0, len(days))
	for i, count := range days {
		p.ByDayOfWeek = append(p.ByDayOfWeek, DayCount{Day: time.Weekday(i).String(), Count: count})
	}

	p.PersonalBests = make([]PersonalBest, 0, len(bests))
	for _, best := range bests {
		p.PersonalBests = append(p.PersonalBests, best)
	}
	sort.Slice(p.PersonalBests, func(i, j int) bool {
		return strings.ToLower(p.PersonalBests[i].Exercise) < strings.ToLower(p.PersonalBests[j].Exercise)
	})
	return p
}

func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
