// Package fbdev gives pimirror direct access to Linux framebuffer devices.
//
// A framebuffer is opened by number (/dev/fb0, /dev/fb1, ...), queried with
// the FBIOGET ioctls and mapped into memory. WriteFrame converts RGBA pixels
// into the device's native layout, ReadFrame converts back, so pimirror can
// use a framebuffer as either end of a mirror.
package fbdev

import (
	"errors"
	"fmt"
	"image"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/jmylchreest/pimirror/internal/display"
)

// Errors returned by framebuffer operations.
var (
	ErrReadOnly    = errors.New("framebuffer is opened read-only")
	ErrFrameBounds = errors.New("frame bounds do not match framebuffer geometry")
)

// Device is an open, memory-mapped framebuffer.
type Device struct {
	number   int
	path     string
	file     *os.File
	mem      []byte
	writable bool
	info     display.Info

	// Pixel walk parameters derived from the screen info
	stride  int // bytes per row of the virtual framebuffer
	xOffset int // visible area offset within the virtual framebuffer
	yOffset int
	layout  pixelLayout
}

// Path returns the device path for a framebuffer number, e.g. "/dev/fb1".
func Path(number int) string {
	return fmt.Sprintf("/dev/fb%d", number)
}

// Open opens a framebuffer for mirror output.
func Open(number int) (*Device, error) {
	return open(number, true)
}

// OpenReadOnly opens a framebuffer for capture only.
// WriteFrame on the returned device fails with ErrReadOnly.
func OpenReadOnly(number int) (*Device, error) {
	return open(number, false)
}

func open(number int, writable bool) (*Device, error) {
	path := Path(number)

	flag := os.O_RDONLY
	prot := unix.PROT_READ
	if writable {
		flag = os.O_RDWR
		prot |= unix.PROT_WRITE
	}

	file, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer: %w", err)
	}

	var fix fixScreenInfo
	if err := ioctl(file.Fd(), fbioGetFScreenInfo, unsafe.Pointer(&fix)); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read fixed screen info for %s: %w", path, err)
	}

	var variable varScreenInfo
	if err := ioctl(file.Fd(), fbioGetVScreenInfo, unsafe.Pointer(&variable)); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read variable screen info for %s: %w", path, err)
	}

	if fix.Type != fbTypePackedPixels || fix.Visual != fbVisualTrueColor {
		file.Close()
		return nil, fmt.Errorf("%s: %w: type=%d visual=%d", path, ErrUnsupportedLayout, fix.Type, fix.Visual)
	}

	layout, err := layoutFor(variable)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, int(fix.SmemLen), prot, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to map framebuffer %s: %w", path, err)
	}

	dev := &Device{
		number:   number,
		path:     path,
		file:     file,
		mem:      mem,
		writable: writable,
		stride:   int(fix.LineLength),
		xOffset:  int(variable.XOffset),
		yOffset:  int(variable.YOffset),
		layout:   layout,
		info: display.Info{
			Display: number,
			Device:  path,
			Width:   int(variable.XRes),
			Height:  int(variable.YRes),
			Stride:  int(fix.LineLength),
			Format:  layout.format,
		},
	}

	if err := dev.info.Validate(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dev, nil
}

// Info returns the framebuffer geometry and pixel format.
func (d *Device) Info() display.Info {
	return d.info
}

// WriteFrame blits an RGBA frame into the framebuffer, converting every
// pixel to the device's native layout. The frame must cover the visible
// geometry exactly; scaling happens before the write.
func (d *Device) WriteFrame(frame *image.RGBA) error {
	if !d.writable {
		return ErrReadOnly
	}
	if frame.Bounds() != d.info.Bounds() {
		return fmt.Errorf("%w: frame %v, framebuffer %v", ErrFrameBounds, frame.Bounds(), d.info.Bounds())
	}

	for y := 0; y < d.info.Height; y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+4*d.info.Width]
		d.layout.packRow(d.row(y), src)
	}
	return nil
}

// ReadFrame copies the visible framebuffer contents into an RGBA frame.
func (d *Device) ReadFrame(frame *image.RGBA) error {
	if frame.Bounds() != d.info.Bounds() {
		return fmt.Errorf("%w: frame %v, framebuffer %v", ErrFrameBounds, frame.Bounds(), d.info.Bounds())
	}

	for y := 0; y < d.info.Height; y++ {
		dst := frame.Pix[y*frame.Stride : y*frame.Stride+4*d.info.Width]
		d.layout.unpackRow(dst, d.row(y))
	}
	return nil
}

// row returns the mapped bytes for one visible row, honouring the
// panning offsets reported by the device.
func (d *Device) row(y int) []byte {
	begin := d.stride*(y+d.yOffset) + d.layout.bpp*d.xOffset
	return d.mem[begin : begin+d.layout.bpp*d.info.Width]
}

// Close unmaps and closes the framebuffer device.
func (d *Device) Close() error {
	var firstErr error
	if d.mem != nil {
		if err := unix.Munmap(d.mem); err != nil {
			firstErr = err
		}
		d.mem = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.file = nil
	}
	return firstErr
}

func ioctl(fd uintptr, request uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, uintptr(arg)); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
