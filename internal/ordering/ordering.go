// Package ordering keeps the per-workspace task order dense: for N tasks the
// order values are exactly 0..N-1. It only computes plans; persisting them is
// the caller's job.
package ordering

import (
	"errors"
	"sort"

	"taskroom.app/server/internal/model"
)

var ErrTaskNotFound = errors.New("task not found in ordering")

// Shift moves one task from one order slot to another.
type Shift struct {
	TaskID int64
	From   int
	To     int
}

// Plan is the full set of order changes for one mutation. Target is the task
// the caller asked about; Shifts are the neighbours that slide to keep the
// sequence dense.
type Plan struct {
	Target  Shift
	Shifts  []Shift
	Removed bool
}

// Empty reports a plan that changes nothing, such as a move to the current slot.
func (p Plan) Empty() bool {
	return !p.Removed && p.Target.From == p.Target.To && len(p.Shifts) == 0
}

// Apply returns a copy of tasks with the plan applied, sorted by order.
func (p Plan) Apply(tasks []model.Task) []model.Task {
	moves := make(map[int64]int, len(p.Shifts)+1)
	for _, s := range p.Shifts {
		moves[s.TaskID] = s.To
	}

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == p.Target.TaskID {
			if p.Removed {
				continue
			}
			t.Order = p.Target.To
		} else if to, ok := moves[t.ID]; ok {
			t.Order = to
		}
		out = append(out, t)
	}
	SortByOrder(out)
	return out
}

// Append returns the order a new task takes in a workspace that holds count tasks.
func Append(count int) int {
	return count
}

// Move plans moving taskID to destination. Destinations outside the list
// are clamped to the nearest end.
func Move(tasks []model.Task, taskID int64, destination int) (Plan, error) {
	target, ok := find(tasks, taskID)
	if !ok {
		return Plan{}, ErrTaskNotFound
	}

	destination = clamp(destination, 0, len(tasks)-1)
	current := target.Order
	plan := Plan{Target: Shift{TaskID: taskID, From: current, To: destination}}
	if destination == current {
		return plan, nil
	}

	low, high := min(current, destination), max(current, destination)
	direction := 1
	if destination < current {
		direction = -1
	}

	for _, t := range tasks {
		if t.ID == taskID || t.Order < low || t.Order > high {
			continue
		}
		plan.Shifts = append(plan.Shifts, Shift{TaskID: t.ID, From: t.Order, To: t.Order - direction})
	}
	sortShifts(plan.Shifts)
	return plan, nil
}

// Remove plans deleting taskID: every task after it slides down one slot.
func Remove(tasks []model.Task, taskID int64) (Plan, error) {
	target, ok := find(tasks, taskID)
	if !ok {
		return Plan{}, ErrTaskNotFound
	}

	plan := Plan{
		Target:  Shift{TaskID: taskID, From: target.Order, To: target.Order},
		Removed: true,
	}
	for _, t := range tasks {
		if t.Order > target.Order {
			plan.Shifts = append(plan.Shifts, Shift{TaskID: t.ID, From: t.Order, To: t.Order - 1})
		}
	}
	sortShifts(plan.Shifts)
	return plan, nil
}

// Dense reports whether the order values of tasks are exactly 0..len-1.
func Dense(tasks []model.Task) bool {
	seen := make([]bool, len(tasks))
	for _, t := range tasks {
		if t.Order < 0 || t.Order >= len(tasks) || seen[t.Order] {
			return false
		}
		seen[t.Order] = true
	}
	return true
}

func SortByOrder(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
}

func find(tasks []model.Task, taskID int64) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return model.Task{}, false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func sortShifts(shifts []Shift) {
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].From < shifts[j].From })
}
