// SPDX-License-Identifier: Unlicense OR MIT

//go:build !windows

package wgl

func lastError() error {
	return nil
}
