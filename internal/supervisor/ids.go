package supervisor

import "github.com/google/uuid"

// newTaskID returns a short opaque identifier. Uniqueness within the
// registry is enforced by the Engine at registration time.
func newTaskID() string {
	return "task-" + uuid.NewString()[:8]
}
