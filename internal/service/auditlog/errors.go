package auditlog

import "errors"

// ErrPersistence marks an audit write that could not be stored. Callers
// match it with errors.Is.
var ErrPersistence = errors.New("audit log persistence failed")
