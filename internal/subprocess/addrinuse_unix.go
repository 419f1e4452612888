//go:build unix

package subprocess

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isAddressInUse(err error) bool {
	return errors.Is(err, unix.EADDRINUSE)
}
