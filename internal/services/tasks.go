package services

import (
	"context"

	"makeros/internal/core"
	"makeros/internal/gateway"
)

// TaskService maintains the staff to-do list. New tasks prepend and start
// uncompleted.
type TaskService struct {
	base
}

func (s *TaskService) List() []core.Task {
	return s.store.Tasks()
}

func (s *TaskService) Create(ctx context.Context, text string) (core.Task, error) {
	task := core.Task{ID: s.newID(), Text: text}
	if err := task.Validate(); err != nil {
		return core.Task{}, err
	}

	next := append([]core.Task{task}, s.store.Tasks()...)
	s.store.ReplaceTasks(next)
	s.dispatch(gateway.KeyTasks, next)

	s.log.InfoContext(ctx, "Task added", "id", task.ID)
	return task, nil
}

// Toggle flips the completed flag on the matching task. Unknown ids are a
// silent no-op.
func (s *TaskService) Toggle(ctx context.Context, id string) []core.Task {
	cur := s.store.Tasks()
	next := make([]core.Task, len(cur))
	copy(next, cur)
	found := false
	for i := range next {
		if next[i].ID == id {
			next[i].Completed = !next[i].Completed
			found = true
			break
		}
	}
	if !found {
		return cur
	}

	s.store.ReplaceTasks(next)
	s.dispatch(gateway.KeyTasks, next)
	return next
}

func (s *TaskService) Update(ctx context.Context, id string, fields core.Task) ([]core.Task, error) {
	fields.ID = id
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	cur := s.store.Tasks()
	next := make([]core.Task, len(cur))
	copy(next, cur)
	found := false
	for i := range next {
		if next[i].ID == id {
			next[i] = fields
			found = true
			break
		}
	}
	if !found {
		return cur, nil
	}

	s.store.ReplaceTasks(next)
	s.dispatch(gateway.KeyTasks, next)
	return next, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) []core.Task {
	cur := s.store.Tasks()
	next := make([]core.Task, 0, len(cur))
	for _, t := range cur {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(cur) {
		return cur
	}

	s.store.ReplaceTasks(next)
	s.dispatch(gateway.KeyTasks, next)
	s.log.InfoContext(ctx, "Task deleted", "id", id)
	return next
}
