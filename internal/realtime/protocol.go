package realtime

import (
	"encoding/json"
	"time"

	"taskroom.app/server/internal/http/dto"
)

// FrameType represents the type of WebSocket frame.
type FrameType string

const (
	FrameTypeRequest  FrameType = "req"
	FrameTypeResponse FrameType = "res"
	FrameTypeEvent    FrameType = "event"
)

// Method represents a real-time request method.
type Method string

const (
	MethodAddTask                 Method = "AddTask"
	MethodUpdateTask              Method = "UpdateTask"
	MethodDeleteTask              Method = "DeleteTask"
	MethodUpdateTaskTitle         Method = "UpdateTaskTitle"
	MethodUpdateTaskCompleted     Method = "UpdateTaskCompleted"
	MethodUpdateTaskDeadline      Method = "UpdateTaskDeadline"
	MethodUpdateTaskOrder         Method = "UpdateTaskOrder"
	MethodConnectToWorkspace      Method = "ConnectToWorkspace"
	MethodDisconnectFromWorkspace Method = "DisconnectFromWorkspace"
	MethodAddWorkspace            Method = "AddWorkspace"
	MethodUpdateWorkspaceName     Method = "UpdateWorkspaceName"
	MethodDeleteWorkspace         Method = "DeleteWorkspace"
)

// Frame is the WebSocket protocol envelope. Outbound events are encoded by
// the broadcast package with the same field names.
type Frame struct {
	Type    FrameType       `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  Method          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
}

// MarshalFrame serializes a Frame to JSON bytes.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// UnmarshalFrame deserializes JSON bytes into a Frame.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}

// NewResponseFrame creates a response Frame.
func NewResponseFrame(id string, ok bool, payload any, errMsg string) (Frame, error) {
	f := Frame{
		Type:  FrameTypeResponse,
		ID:    id,
		OK:    &ok,
		Error: errMsg,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Frame{}, err
		}
		f.Payload = data
	}
	return f, nil
}

type addTaskParams struct {
	Title    string     `json:"title"`
	Deadline *time.Time `json:"deadline"`
}

type updateTaskParams struct {
	TaskID int64          `json:"taskId,string"`
	Task   dto.TaskFields `json:"task"`
}

type taskRefParams struct {
	TaskID int64 `json:"taskId,string"`
}

type updateTaskTitleParams struct {
	TaskID int64  `json:"taskId,string"`
	Title  string `json:"title"`
}

type updateTaskCompletedParams struct {
	TaskID    int64 `json:"taskId,string"`
	Completed bool  `json:"completed"`
}

type updateTaskDeadlineParams struct {
	TaskID   int64      `json:"taskId,string"`
	Deadline *time.Time `json:"deadline"`
}

type updateTaskOrderParams struct {
	TaskID           int64 `json:"taskId,string"`
	DestinationOrder int   `json:"destinationOrder"`
}

type workspaceRefParams struct {
	WorkspaceID int64 `json:"workspaceId,string"`
}

type addWorkspaceParams struct {
	Name string `json:"name"`
}

type updateWorkspaceNameParams struct {
	WorkspaceID int64  `json:"workspaceId,string"`
	Name        string `json:"name"`
}
