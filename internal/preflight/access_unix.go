//go:build unix

package preflight

import "golang.org/x/sys/unix"

const (
	accessRead  = unix.R_OK
	accessWrite = unix.W_OK
	accessExec  = unix.X_OK
)

func access(path string, mode uint32) error {
	return unix.Access(path, mode)
}
