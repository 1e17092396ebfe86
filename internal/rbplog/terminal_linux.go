//go:build linux

package rbplog

import (
	"syscall"
	"unsafe"
)

const tcgets = 0x5401

// isTerminal reports whether fd refers to a terminal, via TCGETS.
func isTerminal(fd uintptr) bool {
	var termios syscall.Termios
	_, _, errno := syscall.Syscall6(
		syscall.SYS_IOCTL,
		fd,
		tcgets,
		uintptr(unsafe.Pointer(&termios)),
		0, 0, 0,
	)
	return errno == 0
}
