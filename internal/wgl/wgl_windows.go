// SPDX-License-Identifier: Unlicense OR MIT

package wgl

import (
	syscall "golang.org/x/sys/windows"
)

func lastError() error {
	if err := syscall.GetLastError(); err != nil {
		return err
	}
	return nil
}
