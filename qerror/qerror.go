package qerror

import (
	"fmt"
)

// Error is an error kind identified by its code. Formatted copies keep
// the code, so errors.Is matches a kind against any of its instances.
type Error struct {
	code    string
	message string
	args    []interface{}
}

func create(code string, message string) *Error {
	return &Error{code: code, message: message}
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Error() string {
	if len(e.args) == 0 {
		return e.message
	}
	return fmt.Sprintf(e.message, e.args...)
}

// Format returns a copy of the kind with the message arguments filled in.
func (e *Error) Format(a ...interface{}) *Error {
	return &Error{code: e.code, message: e.message, args: a}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

var (
	Internal             = create("Internal", "internal error")
	GatewayUnavailable   = create("GatewayUnavailable", "sql gateway %s is unavailable: %s")
	GatewayRequestFailed = create("GatewayRequestFailed", "sql gateway request %s failed, http status code %d, message %s")
	SessionNotFound      = create("SessionNotFound", "session %s does not exist")
	OperationNotFound    = create("OperationNotFound", "operation %s does not exist in session %s")
	InvalidHandle        = create("InvalidHandle", "invalid %s handle %q")
	PollTimeout          = create("PollTimeout", "%s is still not ready after %d attempts")
	UnsupportedTaskType  = create("UnsupportedTaskType", "%s task are not currently supported")
	InvalidTaskType      = create("InvalidTaskType", "invalid task type: %s")
	InvalidMemorySize    = create("InvalidMemorySize", "invalid memory size %q for %s")
	InvalidJobConfig     = create("InvalidJobConfig", "invalid job config: %s")
	DeployFailed         = create("DeployFailed", "deploy application cluster failed: %s")
	ClusterRequestFailed = create("ClusterRequestFailed", "cluster request %s failed, http status code %d, message %s")
)

var (
	ResourceNotExists = create("ResourceNotExists", "resource %s does not exist")
)
