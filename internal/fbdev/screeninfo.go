package fbdev

// Framebuffer ioctl requests from linux/fb.h.
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// Framebuffer type and visual values pimirror can drive.
const (
	fbTypePackedPixels = 0
	fbVisualTrueColor  = 2
)

// bitField mirrors struct fb_bitfield.
type bitField struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

// fixScreenInfo mirrors struct fb_fix_screeninfo.
// The uintptr fields stand in for the kernel's unsigned long so the
// layout matches on both 32-bit and 64-bit ARM.
type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// varScreenInfo mirrors struct fb_var_screeninfo.
type varScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          bitField
	Green        bitField
	Blue         bitField
	Transp       bitField
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}
