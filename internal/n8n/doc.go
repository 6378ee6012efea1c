// Package n8n forwards workflow management and webhook calls to an n8n
// server.
//
// Two components share one shape: WorkflowGateway talks to the management
// API (/api/v1/...) with the X-N8N-API-KEY header, and WebhookRelay sends
// arbitrary-method calls to webhook URLs. Both perform exactly one upstream
// call per operation through remote.Client and fold every failure into a
// degraded result:
//
//	ListWorkflows                      -> []            on failure
//	GetWorkflow / GetExecutionStatus   -> {"error": ..} on failure
//	ToggleWorkflow                     -> {"error": ..} on failure
//	ExecuteWorkflow                    -> status "failed"
//	Trigger / Test                     -> success false
//
// Nothing in this package returns an error to its caller.
package n8n
