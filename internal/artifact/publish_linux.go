package artifact

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// exchangePaths swaps a and b atomically with renameat2(RENAME_EXCHANGE).
func exchangePaths(a, b string) error {
	err := unix.Renameat2(unix.AT_FDCWD, a, unix.AT_FDCWD, b, unix.RENAME_EXCHANGE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EINVAL), errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EOPNOTSUPP):
		return fmt.Errorf("%w: %v", errExchangeUnsupported, err)
	default:
		return err
	}
}
