package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskroom.app/server/common/logger"
	"taskroom.app/server/internal/model"
	"taskroom.app/server/internal/ordering"
	"taskroom.app/server/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrWorkspaceNotFound = fmt.Errorf("workspace %w", ErrNotFound)
	ErrTaskNotFound      = fmt.Errorf("task %w", ErrNotFound)
)

// WorkspaceService is the only way to mutate workspaces and their tasks.
// Operations that can change task order run one at a time per workspace.
type WorkspaceService interface {
	AddWorkspace(ctx context.Context, name string) (*model.WorkspaceSummary, error)
	GetWorkspaces(ctx context.Context) ([]model.WorkspaceSummary, error)
	GetWorkspaceSummary(ctx context.Context, id int64) (*model.WorkspaceSummary, error)
	UpdateWorkspaceInfo(ctx context.Context, id int64, patch model.WorkspacePatch) (*model.WorkspaceSummary, error)
	DeleteWorkspace(ctx context.Context, id int64) (*model.WorkspaceSummary, error)

	GetWorkspaceTasks(ctx context.Context, workspaceID int64) ([]model.Task, error)
	GetTask(ctx context.Context, workspaceID, taskID int64) (*model.Task, error)
	AddTask(ctx context.Context, workspaceID int64, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, workspaceID, taskID int64, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, workspaceID, taskID int64) (*model.Task, error)
}

type workspaceService struct {
	stores   StoreProvider
	txRunner TxRunner
	locks    *workspaceLocks
}

func NewWorkspaceService(stores StoreProvider, txRunner TxRunner) WorkspaceService {
	return &workspaceService{
		stores:   stores,
		txRunner: txRunner,
		locks:    newWorkspaceLocks(),
	}
}

func (s *workspaceService) AddWorkspace(ctx context.Context, name string) (*model.WorkspaceSummary, error) {
	if name == "" {
		name = model.DefaultWorkspaceName
	}

	ws := &model.Workspace{Name: name}
	if err := s.stores.Workspaces().Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &ws.ID}), "workspace created")

	return &model.WorkspaceSummary{ID: ws.ID, Name: ws.Name}, nil
}

func (s *workspaceService) GetWorkspaces(ctx context.Context) ([]model.WorkspaceSummary, error) {
	summaries, err := s.stores.Workspaces().ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	if summaries == nil {
		summaries = []model.WorkspaceSummary{}
	}
	return summaries, nil
}

func (s *workspaceService) GetWorkspaceSummary(ctx context.Context, id int64) (*model.WorkspaceSummary, error) {
	summary, err := s.stores.Workspaces().GetSummary(ctx, id)
	if err != nil {
		return nil, workspaceErr(err, "getting workspace")
	}
	return summary, nil
}

// UpdateWorkspaceInfo applies the patch and re-reads the summary, so the id
// and task count always come from the store.
func (s *workspaceService) UpdateWorkspaceInfo(ctx context.Context, id int64, patch model.WorkspacePatch) (*model.WorkspaceSummary, error) {
	var summary *model.WorkspaceSummary
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		ws, err := stores.Workspaces().Lock(ctx, id)
		if err != nil {
			return workspaceErr(err, "locking workspace")
		}

		patch.Apply(ws)
		ws.ID = id
		if ws.Name == "" {
			ws.Name = model.DefaultWorkspaceName
		}

		if err := stores.Workspaces().Update(ctx, ws); err != nil {
			return workspaceErr(err, "updating workspace")
		}

		summary, err = stores.Workspaces().GetSummary(ctx, id)
		if err != nil {
			return workspaceErr(err, "reading workspace summary")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// DeleteWorkspace removes the workspace and, by cascade, its tasks. The
// returned summary describes the workspace as it was just before deletion.
func (s *workspaceService) DeleteWorkspace(ctx context.Context, id int64) (*model.WorkspaceSummary, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &id})
	unlock := s.locks.lock(id)
	defer unlock()

	var summary *model.WorkspaceSummary
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Workspaces().Lock(ctx, id); err != nil {
			return workspaceErr(err, "locking workspace")
		}

		var err error
		summary, err = stores.Workspaces().GetSummary(ctx, id)
		if err != nil {
			return workspaceErr(err, "reading workspace summary")
		}

		if err := stores.Workspaces().Delete(ctx, id); err != nil {
			return workspaceErr(err, "deleting workspace")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "workspace deleted", "task_count", summary.TaskCount)
	return summary, nil
}

func (s *workspaceService) GetWorkspaceTasks(ctx context.Context, workspaceID int64) ([]model.Task, error) {
	if _, err := s.stores.Workspaces().GetByID(ctx, workspaceID); err != nil {
		return nil, workspaceErr(err, "getting workspace")
	}

	tasks, err := s.stores.Tasks().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	ordering.SortByOrder(tasks)
	return tasks, nil
}

func (s *workspaceService) GetTask(ctx context.Context, workspaceID, taskID int64) (*model.Task, error) {
	if _, err := s.stores.Workspaces().GetByID(ctx, workspaceID); err != nil {
		return nil, workspaceErr(err, "getting workspace")
	}

	task, err := s.stores.Tasks().GetByID(ctx, workspaceID, taskID)
	if err != nil {
		return nil, taskErr(err, "getting task")
	}
	return task, nil
}

// AddTask appends a task to the workspace. Any id or order set by the
// caller is ignored.
func (s *workspaceService) AddTask(ctx context.Context, workspaceID int64, task model.Task) (*model.Task, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &workspaceID})
	unlock := s.locks.lock(workspaceID)
	defer unlock()

	sc := logger.StartSpan(ctx, "service.add_task")
	defer sc.End()
	ctx = sc.Context()

	created := model.Task{
		WorkspaceID: workspaceID,
		Title:       task.Title,
		Completed:   task.Completed,
		Deadline:    task.Deadline,
	}
	if created.Title == "" {
		created.Title = model.DefaultTaskTitle
	}

	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Workspaces().Lock(ctx, workspaceID); err != nil {
			return workspaceErr(err, "locking workspace")
		}

		count, err := stores.Tasks().Count(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("counting tasks: %w", err)
		}
		created.Order = ordering.Append(count)

		if err := stores.Tasks().Create(ctx, &created); err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		return nil
	})
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	slog.DebugContext(ctx, "task added", "task_id", created.ID, "order", created.Order)
	return &created, nil
}

// UpdateTask merges the patch into the stored task. An order change is
// planned against the task list read inside the transaction and every
// shifted row is written in that same transaction. A patch that changes
// nothing writes nothing.
func (s *workspaceService) UpdateTask(ctx context.Context, workspaceID, taskID int64, patch model.TaskPatch) (*model.Task, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &workspaceID, TaskID: &taskID})
	unlock := s.locks.lock(workspaceID)
	defer unlock()

	sc := logger.StartSpan(ctx, "service.update_task")
	defer sc.End()
	ctx = sc.Context()

	var updated model.Task
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Workspaces().Lock(ctx, workspaceID); err != nil {
			return workspaceErr(err, "locking workspace")
		}

		tasks, err := stores.Tasks().ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		original, ok := findTask(tasks, taskID)
		if !ok {
			return ErrTaskNotFound
		}

		updated = original
		patch.Apply(&updated)
		updated.ID = original.ID
		updated.WorkspaceID = original.WorkspaceID

		var plan ordering.Plan
		if updated.Order != original.Order {
			plan, err = ordering.Move(tasks, taskID, updated.Order)
			if err != nil {
				return fmt.Errorf("planning move: %w", err)
			}
			updated.Order = plan.Target.To
		}

		if updated.SameContent(original) {
			updated = original
			return nil
		}

		if err := stores.Tasks().ShiftOrders(ctx, workspaceID, plan.Shifts); err != nil {
			return fmt.Errorf("shifting tasks: %w", err)
		}
		if err := stores.Tasks().Update(ctx, &updated); err != nil {
			return taskErr(err, "updating task")
		}

		if !plan.Empty() {
			slog.DebugContext(ctx, "task moved",
				"from", plan.Target.From, "to", plan.Target.To, "shifted", len(plan.Shifts))
		}
		return nil
	})
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes the task and closes the gap it leaves in one transaction.
func (s *workspaceService) DeleteTask(ctx context.Context, workspaceID, taskID int64) (*model.Task, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &workspaceID, TaskID: &taskID})
	unlock := s.locks.lock(workspaceID)
	defer unlock()

	sc := logger.StartSpan(ctx, "service.delete_task")
	defer sc.End()
	ctx = sc.Context()

	var deleted model.Task
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Workspaces().Lock(ctx, workspaceID); err != nil {
			return workspaceErr(err, "locking workspace")
		}

		tasks, err := stores.Tasks().ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		plan, err := ordering.Remove(tasks, taskID)
		if err != nil {
			if errors.Is(err, ordering.ErrTaskNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("planning removal: %w", err)
		}
		deleted, _ = findTask(tasks, taskID)

		if err := stores.Tasks().Delete(ctx, workspaceID, taskID); err != nil {
			return taskErr(err, "deleting task")
		}
		if err := stores.Tasks().ShiftOrders(ctx, workspaceID, plan.Shifts); err != nil {
			return fmt.Errorf("shifting tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}
	return &deleted, nil
}

func findTask(tasks []model.Task, taskID int64) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return model.Task{}, false
}

func workspaceErr(err error, action string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrWorkspaceNotFound
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}

func taskErr(err error, action string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", action, err)
}
