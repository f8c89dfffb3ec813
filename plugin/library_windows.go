//go:build windows

package plugin

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type dllLibrary struct {
	handle windows.Handle
}

func openLibrary(path string) (library, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLibrary: %w", err)
	}
	return &dllLibrary{handle: handle}, nil
}

func (l *dllLibrary) Symbol(name string) (uintptr, error) {
	return windows.GetProcAddress(l.handle, name)
}

func (l *dllLibrary) Close() error {
	return windows.FreeLibrary(l.handle)
}
