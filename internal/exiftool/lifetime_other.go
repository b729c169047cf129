//go:build !linux && !windows

package exiftool

import "os/exec"

// tieLifetimeToParent is a no-op where no parent-death mechanism exists.
func tieLifetimeToParent(_ *exec.Cmd) {}
