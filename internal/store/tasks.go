package store

import (
	"slices"

	"github.com/sadopc/weekly/internal/schedule"
)

// AddTask appends a task to the active schedule. The id on t is ignored and a
// fresh one is returned.
func (s *Store) AddTask(t schedule.Task) (string, error) {
	t = t.Clone()
	t.ID = s.newID()
	if t.Color == "" {
		t.Color = schedule.DefaultTaskColor
	}
	if err := schedule.ValidateTask(t); err != nil {
		return "", err
	}
	err := s.editActive(func(sc *schedule.Schedule) error {
		sc.Tasks = append(sc.Tasks, t)
		return nil
	})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// UpdateTask replaces the task with the same id in the active schedule.
func (s *Store) UpdateTask(t schedule.Task) error {
	if err := schedule.ValidateTask(t); err != nil {
		return err
	}
	t = t.Clone()
	return s.editActive(func(sc *schedule.Schedule) error {
		i := slices.IndexFunc(sc.Tasks, func(x schedule.Task) bool { return x.ID == t.ID })
		if i < 0 {
			return ErrTaskNotFound
		}
		sc.Tasks[i] = t
		return nil
	})
}

// RemoveTask deletes a task from the active schedule.
func (s *Store) RemoveTask(taskID string) error {
	return s.editActive(func(sc *schedule.Schedule) error {
		i := slices.IndexFunc(sc.Tasks, func(x schedule.Task) bool { return x.ID == taskID })
		if i < 0 {
			return ErrTaskNotFound
		}
		sc.Tasks = slices.Delete(sc.Tasks, i, i+1)
		return nil
	})
}

// UpdateSettings shallow-merges p into the active schedule's settings. The
// merged result must be valid.
func (s *Store) UpdateSettings(p schedule.SettingsPatch) error {
	return s.editActive(func(sc *schedule.Schedule) error {
		merged := p.Apply(sc.Settings)
		if err := schedule.ValidateSettings(merged); err != nil {
			return err
		}
		sc.Settings = merged
		return nil
	})
}
