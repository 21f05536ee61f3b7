package tasks

import (
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeSessionPurge = "session:purge"
)

// NewSessionPurgeTask builds the periodic purge task. It carries no payload;
// the handler sweeps everything past its expiry.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(TypeSessionPurge, nil)
}
