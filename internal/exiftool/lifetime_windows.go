//go:build windows

package exiftool

import (
	"os/exec"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var jobOnce sync.Once

// tieLifetimeToParent places the current process in a job object that kills
// every member when its last handle closes. Children inherit the job, so they
// die with us. Failures are ignored: we may already run inside a restrictive
// job.
func tieLifetimeToParent(_ *exec.Cmd) {
	jobOnce.Do(func() {
		_ = joinKillOnCloseJob()
	})
}

func joinKillOnCloseJob() error {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return err
	}
	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{}
	info.BasicLimitInformation.LimitFlags = windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		_ = windows.CloseHandle(job)
		return err
	}
	if err := windows.AssignProcessToJobObject(job, windows.CurrentProcess()); err != nil {
		_ = windows.CloseHandle(job)
		return err
	}
	// The handle stays open for the life of the process; the OS closes it
	// on exit, which triggers the kill.
	return nil
}
