//go:build windows

package updater

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// fileVersion reads the FileVersion fields of the PE version resource.
// Builds without a resource (or stripped ones) report false.
func fileVersion(path string) (Version, bool) {
	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil || size == 0 {
		return Version{}, false
	}

	buf := make([]byte, size)
	if err := windows.GetFileVersionInfo(path, 0, size, unsafe.Pointer(&buf[0])); err != nil {
		return Version{}, false
	}

	var info *windows.VS_FIXEDFILEINFO
	var infoLen uint32
	if err := windows.VerQueryValue(unsafe.Pointer(&buf[0]), `\`, unsafe.Pointer(&info), &infoLen); err != nil {
		return Version{}, false
	}
	if info == nil || infoLen == 0 {
		return Version{}, false
	}

	return Version{
		Major: int(info.FileVersionMS >> 16),
		Minor: int(info.FileVersionMS & 0xffff),
		Patch: int(info.FileVersionLS >> 16),
		Build: int(info.FileVersionLS & 0xffff),
	}, true
}
