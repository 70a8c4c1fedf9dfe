package drive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/tyan-boot/wdepc/pkg/drive/sgio"
)

func TestOpenErrorPermission(t *testing.T) {
	err := &OpenError{Path: "/dev/sda", Mode: ReadWrite, Err: &os.PathError{Op: "open", Path: "/dev/sda", Err: unix.EACCES}}
	if !err.Permission() {
		t.Errorf("Permission() = false for EACCES")
	}
	if !strings.Contains(err.Error(), "root privileges") {
		t.Errorf("Error() = %q; want a privilege hint", err.Error())
	}
	if !errors.Is(err, unix.EACCES) {
		t.Errorf("errors.Is(%v, EACCES) = false", err)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdz")
	_, err := Open(path, ReadOnly)
	var oe *OpenError
	if !errors.As(err, &oe) {
		t.Fatalf("Open(%s) error = %v; want *OpenError", path, err)
	}
	if oe.Permission() || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(%s) error = %v; want not exist", path, err)
	}
	if oe.Mode != ReadOnly {
		t.Errorf("OpenError.Mode = %s; want %s", oe.Mode, ReadOnly)
	}
}

func TestOpenRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image")
	if err := os.WriteFile(path, make([]byte, 512), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, ReadOnly); !errors.Is(err, ErrDeviceNotSupported) {
		t.Errorf("Open(%s) error = %v; want %v", path, err, ErrDeviceNotSupported)
	}
}

type closedFd struct{}

func (closedFd) Fd() uintptr  { return ^uintptr(0) }
func (closedFd) Close() error { return nil }

func TestPassThroughBadFd(t *testing.T) {
	d := ATA(closedFd{})
	_, err := d.PassThrough(make([]byte, 12), nil, nil)
	var te *sgio.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("PassThrough() error = %v; want *sgio.TransportError", err)
	}
	if _, err := d.Features(); err == nil {
		t.Errorf("Features() succeeded on a bad fd")
	}
}

func TestModeString(t *testing.T) {
	if ReadOnly.String() != "read-only" || ReadWrite.String() != "read-write" {
		t.Errorf("Mode.String() = %q, %q", ReadOnly, ReadWrite)
	}
}
