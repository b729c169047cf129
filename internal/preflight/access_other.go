//go:build !unix

package preflight

import "os"

const (
	accessRead uint32 = 1 << iota
	accessWrite
	accessExec
)

// access only checks existence and the read-only attribute.
func access(path string, mode uint32) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode&accessWrite != 0 && info.Mode().Perm()&0o200 == 0 {
		return os.ErrPermission
	}
	return nil
}
