package broadcast

import (
	"encoding/json"
	"time"

	"taskroom.app/server/internal/model"
)

// Event names as clients see them in the "event" field of a frame.
const (
	EventAddTask             = "AddTask"
	EventUpdateTask          = "UpdateTask"
	EventUpdateTaskTitle     = "UpdateTaskTitle"
	EventUpdateTaskCompleted = "UpdateTaskCompleted"
	EventUpdateTaskDeadline  = "UpdateTaskDeadline"
	EventUpdateTaskOrder     = "UpdateTaskOrder"
	EventDeleteTask          = "DeleteTask"
	EventUserConnected       = "UserConnected"
	EventUserDisconnected    = "UserDisconnected"
	EventConnected           = "Connected"
	EventDisconnected        = "Disconnected"
	EventAddWorkspace        = "AddWorkspace"
	EventUpdateWorkspaceName = "UpdateWorkspaceName"
	EventDeleteWorkspace     = "DeleteWorkspace"
	EventError               = "Error"
)

// Event is one outbound notification.
type Event struct {
	Name    string
	Payload any
}

type eventFrame struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Frame encodes the event as a protocol event frame.
func (e Event) Frame() ([]byte, error) {
	return json.Marshal(eventFrame{Type: "event", Event: e.Name, Payload: e.Payload})
}

type TaskTitlePayload struct {
	TaskID int64  `json:"taskId,string"`
	Title  string `json:"title"`
}

type TaskCompletedPayload struct {
	TaskID    int64 `json:"taskId,string"`
	Completed bool  `json:"completed"`
}

type TaskDeadlinePayload struct {
	TaskID   int64      `json:"taskId,string"`
	Deadline *time.Time `json:"deadline"`
}

type TaskOrderPayload struct {
	TaskID           int64 `json:"taskId,string"`
	DestinationOrder int   `json:"destinationOrder"`
}

type TaskRefPayload struct {
	TaskID int64 `json:"taskId,string"`
}

type UserCountPayload struct {
	Count int `json:"count"`
}

type WorkspaceRefPayload struct {
	WorkspaceID int64 `json:"workspaceId,string"`
}

type WorkspaceNamePayload struct {
	WorkspaceID int64  `json:"workspaceId,string"`
	Name        string `json:"name"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func AddTask(t model.Task) Event {
	return Event{Name: EventAddTask, Payload: t}
}

func UpdateTask(t model.Task) Event {
	return Event{Name: EventUpdateTask, Payload: t}
}

func UpdateTaskTitle(taskID int64, title string) Event {
	return Event{Name: EventUpdateTaskTitle, Payload: TaskTitlePayload{TaskID: taskID, Title: title}}
}

func UpdateTaskCompleted(taskID int64, completed bool) Event {
	return Event{Name: EventUpdateTaskCompleted, Payload: TaskCompletedPayload{TaskID: taskID, Completed: completed}}
}

func UpdateTaskDeadline(taskID int64, deadline *time.Time) Event {
	return Event{Name: EventUpdateTaskDeadline, Payload: TaskDeadlinePayload{TaskID: taskID, Deadline: deadline}}
}

// UpdateTaskOrder carries the order the task actually landed on, after clamping.
func UpdateTaskOrder(taskID int64, order int) Event {
	return Event{Name: EventUpdateTaskOrder, Payload: TaskOrderPayload{TaskID: taskID, DestinationOrder: order}}
}

func DeleteTask(taskID int64) Event {
	return Event{Name: EventDeleteTask, Payload: TaskRefPayload{TaskID: taskID}}
}

func UserConnected(count int) Event {
	return Event{Name: EventUserConnected, Payload: UserCountPayload{Count: count}}
}

func UserDisconnected(count int) Event {
	return Event{Name: EventUserDisconnected, Payload: UserCountPayload{Count: count}}
}

// Connected tells a caller which workspace it has just joined.
func Connected(workspaceID int64) Event {
	return Event{Name: EventConnected, Payload: WorkspaceRefPayload{WorkspaceID: workspaceID}}
}

// Disconnected tells a caller it is no longer in a workspace room.
func Disconnected(workspaceID int64) Event {
	return Event{Name: EventDisconnected, Payload: WorkspaceRefPayload{WorkspaceID: workspaceID}}
}

func AddWorkspace(ws model.WorkspaceSummary) Event {
	return Event{Name: EventAddWorkspace, Payload: ws}
}

func UpdateWorkspaceName(workspaceID int64, name string) Event {
	return Event{Name: EventUpdateWorkspaceName, Payload: WorkspaceNamePayload{WorkspaceID: workspaceID, Name: name}}
}

func DeleteWorkspace(workspaceID int64) Event {
	return Event{Name: EventDeleteWorkspace, Payload: WorkspaceRefPayload{WorkspaceID: workspaceID}}
}

func Error(message string) Event {
	return Event{Name: EventError, Payload: ErrorPayload{Message: message}}
}
