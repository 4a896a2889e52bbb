//go:build !unix && !windows

package platform

import (
	"fmt"
	"runtime"
)

func acquireDirLock(_ string) (DirLock, error) {
	return nil, fmt.Errorf("%w on %s", ErrLockUnsupported, runtime.GOOS)
}
