package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"taskroom.app/server/common/logger"
	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/http/dto"
	"taskroom.app/server/internal/model"
	"taskroom.app/server/internal/room"
	"taskroom.app/server/internal/service"
)

// RoomCloser evicts every connection from a workspace room.
type RoomCloser interface {
	CloseRoom(ctx context.Context, workspaceID int64) int
}

// requestError carries a message that is safe to show the caller.
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

const internalErrorMessage = "Internal server error"

var (
	errNotJoined        = &requestError{msg: "Connect to a workspace first"}
	errAlreadyUnjoined  = &requestError{msg: "Not connected to a workspace"}
	errUnknownFrameType = &requestError{msg: "Unsupported frame type"}
)

// Handler runs real-time methods for one session at a time. It owns the
// Unjoined / JoinedToWorkspace transitions and keeps the room tracker in
// step with the session.
type Handler struct {
	workspaces service.WorkspaceService
	tracker    *room.Tracker
	gateway    *broadcast.Gateway
	rooms      RoomCloser
}

func NewHandler(workspaces service.WorkspaceService, tracker *room.Tracker, gateway *broadcast.Gateway, rooms RoomCloser) *Handler {
	return &Handler{
		workspaces: workspaces,
		tracker:    tracker,
		gateway:    gateway,
		rooms:      rooms,
	}
}

// Handle runs one request frame and returns the response frame. Failures
// are also reported to the caller as an Error event and never broadcast.
func (h *Handler) Handle(ctx context.Context, sess *Session, frame Frame) Frame {
	method := string(frame.Method)
	ctx = logger.WithLogFields(ctx, logger.LogFields{Method: &method})

	sc := logger.StartSpan(ctx, "realtime."+method)
	defer sc.End()
	ctx = sc.Context()

	var (
		payload any
		err     error
	)
	if frame.Type != FrameTypeRequest {
		err = errUnknownFrameType
	} else {
		payload, err = h.dispatch(ctx, sess, frame)
	}

	if err != nil {
		msg := h.clientMessage(ctx, err)
		sc.RecordError(err)
		h.gateway.Caller(sess.ID()).Send(ctx, broadcast.Error(msg))
		resp, _ := NewResponseFrame(frame.ID, false, nil, msg)
		return resp
	}

	resp, err := NewResponseFrame(frame.ID, true, payload, "")
	if err != nil {
		slog.ErrorContext(ctx, "encoding response payload", "error", err)
		resp, _ = NewResponseFrame(frame.ID, false, nil, internalErrorMessage)
	}
	return resp
}

func (h *Handler) dispatch(ctx context.Context, sess *Session, frame Frame) (any, error) {
	switch frame.Method {
	case MethodConnectToWorkspace:
		var p workspaceRefParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.Connect(ctx, sess, p.WorkspaceID)

	case MethodDisconnectFromWorkspace:
		return h.Disconnect(ctx, sess)

	case MethodAddTask:
		var p addTaskParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.addTask(ctx, sess, p)

	case MethodUpdateTask:
		var p updateTaskParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.updateTask(ctx, sess, p.TaskID, p.Task.Patch(), broadcast.UpdateTask)

	case MethodUpdateTaskTitle:
		var p updateTaskTitleParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.updateTask(ctx, sess, p.TaskID, model.TaskPatch{Title: &p.Title}, func(t model.Task) broadcast.Event {
			return broadcast.UpdateTaskTitle(t.ID, t.Title)
		})

	case MethodUpdateTaskCompleted:
		var p updateTaskCompletedParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.updateTask(ctx, sess, p.TaskID, model.TaskPatch{Completed: &p.Completed}, func(t model.Task) broadcast.Event {
			return broadcast.UpdateTaskCompleted(t.ID, t.Completed)
		})

	case MethodUpdateTaskDeadline:
		var p updateTaskDeadlineParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		patch := model.TaskPatch{SetDeadline: true, Deadline: p.Deadline}
		return h.updateTask(ctx, sess, p.TaskID, patch, func(t model.Task) broadcast.Event {
			return broadcast.UpdateTaskDeadline(t.ID, t.Deadline)
		})

	case MethodUpdateTaskOrder:
		var p updateTaskOrderParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.updateTask(ctx, sess, p.TaskID, model.TaskPatch{Order: &p.DestinationOrder}, func(t model.Task) broadcast.Event {
			return broadcast.UpdateTaskOrder(t.ID, t.Order)
		})

	case MethodDeleteTask:
		var p taskRefParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.deleteTask(ctx, sess, p.TaskID)

	case MethodAddWorkspace:
		var p addWorkspaceParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		summary, err := h.workspaces.AddWorkspace(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		h.gateway.All().Send(ctx, broadcast.AddWorkspace(*summary))
		return dto.ToWorkspaceResponse(*summary), nil

	case MethodUpdateWorkspaceName:
		var p updateWorkspaceNameParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		summary, err := h.workspaces.UpdateWorkspaceInfo(ctx, p.WorkspaceID, model.WorkspacePatch{Name: &p.Name})
		if err != nil {
			return nil, serviceErr(err, p.WorkspaceID, 0)
		}
		h.gateway.All().Send(ctx, broadcast.UpdateWorkspaceName(summary.ID, summary.Name))
		return dto.ToWorkspaceResponse(*summary), nil

	case MethodDeleteWorkspace:
		var p workspaceRefParams
		if err := decodeParams(frame, &p); err != nil {
			return nil, err
		}
		return h.deleteWorkspace(ctx, p.WorkspaceID)

	default:
		return nil, &requestError{msg: "Unknown method: " + string(frame.Method)}
	}
}

// Connect moves the session into workspaceID. A missing workspace leaves
// the session where it was. When the session is already in a room it
// leaves that room first, and the old room sees the lower user count.
func (h *Handler) Connect(ctx context.Context, sess *Session, workspaceID int64) (any, error) {
	summary, err := h.workspaces.GetWorkspaceSummary(ctx, workspaceID)
	if err != nil {
		return nil, serviceErr(err, workspaceID, 0)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.joined {
		h.leaveLocked(ctx, sess)
	}

	h.tracker.Join(sess.id, workspaceID)
	sess.joined = true
	sess.workspaceID = workspaceID

	// A delete may have closed the room between the lookup and the join.
	if summary, err = h.workspaces.GetWorkspaceSummary(ctx, workspaceID); err != nil {
		h.tracker.Leave(sess.id)
		sess.joined = false
		sess.workspaceID = 0
		return nil, serviceErr(err, workspaceID, 0)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &workspaceID})
	count := h.tracker.CountInRoom(workspaceID)
	h.gateway.Room(workspaceID).Send(ctx, broadcast.UserConnected(count))
	h.gateway.Caller(sess.id).Send(ctx, broadcast.Connected(workspaceID))
	slog.DebugContext(ctx, "connection joined workspace", "users", count)

	return dto.ToWorkspaceResponse(*summary), nil
}

// Disconnect takes the session out of its room. It fails when the session
// is not in one.
func (h *Handler) Disconnect(ctx context.Context, sess *Session) (any, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.joined {
		return nil, errAlreadyUnjoined
	}

	workspaceID := h.leaveLocked(ctx, sess)
	h.gateway.Caller(sess.id).Send(ctx, broadcast.Disconnected(workspaceID))
	return broadcast.WorkspaceRefPayload{WorkspaceID: workspaceID}, nil
}

// Release runs on physical disconnect and leaves the room if the session is in one.
func (h *Handler) Release(ctx context.Context, sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.joined {
		h.leaveLocked(ctx, sess)
	}
}

func (h *Handler) leaveLocked(ctx context.Context, sess *Session) int64 {
	workspaceID := sess.workspaceID
	h.tracker.Leave(sess.id)
	sess.joined = false
	sess.workspaceID = 0

	h.gateway.Room(workspaceID).Send(ctx, broadcast.UserDisconnected(h.tracker.CountInRoom(workspaceID)))
	return workspaceID
}

func (h *Handler) addTask(ctx context.Context, sess *Session, p addTaskParams) (any, error) {
	workspaceID, ok := sess.Workspace()
	if !ok {
		return nil, errNotJoined
	}

	task, err := h.workspaces.AddTask(ctx, workspaceID, model.Task{Title: p.Title, Deadline: p.Deadline})
	if err != nil {
		return nil, serviceErr(err, workspaceID, 0)
	}

	h.gateway.Room(workspaceID).Send(ctx, broadcast.AddTask(*task))
	return dto.ToTaskResponse(*task), nil
}

func (h *Handler) updateTask(ctx context.Context, sess *Session, taskID int64, patch model.TaskPatch, event func(model.Task) broadcast.Event) (any, error) {
	workspaceID, ok := sess.Workspace()
	if !ok {
		return nil, errNotJoined
	}

	task, err := h.workspaces.UpdateTask(ctx, workspaceID, taskID, patch)
	if err != nil {
		return nil, serviceErr(err, workspaceID, taskID)
	}

	h.gateway.Room(workspaceID).Send(ctx, event(*task))
	return dto.ToTaskResponse(*task), nil
}

func (h *Handler) deleteTask(ctx context.Context, sess *Session, taskID int64) (any, error) {
	workspaceID, ok := sess.Workspace()
	if !ok {
		return nil, errNotJoined
	}

	task, err := h.workspaces.DeleteTask(ctx, workspaceID, taskID)
	if err != nil {
		return nil, serviceErr(err, workspaceID, taskID)
	}

	h.gateway.Room(workspaceID).Send(ctx, broadcast.DeleteTask(task.ID))
	return dto.ToTaskResponse(*task), nil
}

// deleteWorkspace closes the room before deleting, so nobody stays joined
// to a workspace that no longer exists. The room is closed again once the
// delete has committed to evict connections that joined in between.
func (h *Handler) deleteWorkspace(ctx context.Context, workspaceID int64) (any, error) {
	if _, err := h.workspaces.GetWorkspaceSummary(ctx, workspaceID); err != nil {
		return nil, serviceErr(err, workspaceID, 0)
	}

	h.rooms.CloseRoom(ctx, workspaceID)

	summary, err := h.workspaces.DeleteWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, serviceErr(err, workspaceID, 0)
	}

	if late := h.rooms.CloseRoom(ctx, workspaceID); late > 0 {
		slog.InfoContext(ctx, "evicted late joiners from deleted workspace", "workspace_id", workspaceID, "evicted", late)
	}

	h.gateway.All().Send(ctx, broadcast.DeleteWorkspace(workspaceID))
	return dto.ToWorkspaceResponse(*summary), nil
}

func (h *Handler) clientMessage(ctx context.Context, err error) string {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.msg
	}
	slog.ErrorContext(ctx, "real-time request failed", "error", err)
	return internalErrorMessage
}

func decodeParams(frame Frame, v any) error {
	if err := json.Unmarshal(frame.Params, v); err != nil {
		return &requestError{msg: "Invalid params for " + string(frame.Method)}
	}
	return nil
}

func serviceErr(err error, workspaceID, taskID int64) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return &requestError{msg: dto.TaskNotFoundMessage(workspaceID, taskID)}
	case errors.Is(err, service.ErrWorkspaceNotFound):
		return &requestError{msg: dto.WorkspaceNotFoundMessage(workspaceID)}
	default:
		return err
	}
}
