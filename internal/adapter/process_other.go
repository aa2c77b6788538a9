//go:build !unix

package adapter

import "os/exec"

// isolate is best effort without process groups: cancellation kills the
// direct child only.
func isolate(_ *exec.Cmd) {}
