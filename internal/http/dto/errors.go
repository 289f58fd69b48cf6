package dto

import "fmt"

type ErrorResponse struct {
	Error string `json:"error"`
}

func WorkspaceNotFoundMessage(workspaceID int64) string {
	return fmt.Sprintf("Workspace with id %d not found", workspaceID)
}

func TaskNotFoundMessage(workspaceID, taskID int64) string {
	return fmt.Sprintf("Task with id %d not found in workspace with id %d", taskID, workspaceID)
}
