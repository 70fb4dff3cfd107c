//go:build darwin || linux

package nettools

import "golang.org/x/sys/unix"

// probeIdle polls fd for readability without blocking.
func probeIdle(fd uintptr) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		// EINTR leaves the question unanswered
		return err == unix.EINTR
	}
	return n == 0
}
