// Package supervisor owns the task registry and the lifecycle of the
// external agent worker processes.
//
// Architecture notes:
//   - The Engine is the single owner of all Task records; callers
//     observe tasks through snapshot views keyed by task id.
//   - Dispatch is fire-and-forget: launch and runtime failures land on
//     the affected Task record and surface through later queries.
//   - Worker stdout flows through a per-task stream.Assembler; stderr
//     accumulates as diagnostic text. The exit path runs only after
//     both readers drain, so the final flush sees every byte.
//   - Cancellation is two-phase: SIGTERM immediately, SIGKILL on a
//     timer unless the process exits inside the grace period.
package supervisor
