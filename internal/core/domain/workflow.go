package domain

import "encoding/json"

// ExecutionStatus is the outcome of asking n8n to run a workflow.
type ExecutionStatus string

const (
	ExecutionStarted ExecutionStatus = "started"
	ExecutionFailed  ExecutionStatus = "failed"
)

// WorkflowExecutionRequest asks for a workflow to be run with optional input.
type WorkflowExecutionRequest struct {
	WorkflowID string `json:"workflowId" validate:"required"`
	InputData  Object `json:"inputData,omitempty"`
}

// WorkflowExecutionResponse reports whether n8n accepted the execution.
type WorkflowExecutionResponse struct {
	ExecutionID string          `json:"executionId,omitempty"`
	Status      ExecutionStatus `json:"status"`
	Data        json.RawMessage `json:"data,omitempty"`
	Message     string          `json:"message"`
}
