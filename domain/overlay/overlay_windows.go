//go:build windows

package overlay

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	wsExLayered     = 0x00080000
	wsExTransparent = 0x00000020
	wsExTopmost     = 0x00000008
	wsExToolWindow  = 0x00000080
	wsExNoActivate  = 0x08000000

	overlayExStyle = wsExLayered | wsExTransparent | wsExTopmost | wsExToolWindow | wsExNoActivate

	gwlExStyle     = -20
	lwaAlpha       = 0x00000002
	swpNoActivate  = 0x0010
	swpShowWindow  = 0x0040
	htTransparent  = ^uintptr(0) // HTTRANSPARENT (-1)
	dibRGBColors   = 0
	biRGB          = 0
	keyDownBit     = 0x8000
	overlayClsName = "DetectionOverlayWindow"
)

var hwndTopmost = win.HWND(^uintptr(0)) // HWND_TOPMOST (-1)

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	gdi32                          = windows.NewLazySystemDLL("gdi32.dll")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procGetAsyncKeyState           = user32.NewProc("GetAsyncKeyState")
	procShowCursor                 = user32.NewProc("ShowCursor")
	procSetDIBitsToDevice          = gdi32.NewProc("SetDIBitsToDevice")
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	_      [4]byte
}

var (
	classOnce sync.Once
	classErr  error
	// closed flags set by the window procedure, keyed by HWND.
	closeFlags sync.Map
)

func registerClass() error {
	classOnce.Do(func() {
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   syscall.NewCallback(overlayWndProc),
			HInstance:     win.GetModuleHandle(nil),
			LpszClassName: syscall.StringToUTF16Ptr(overlayClsName),
		}
		if win.RegisterClassEx(&wc) == 0 {
			classErr = fmt.Errorf("overlay: RegisterClassEx failed")
		}
	})
	return classErr
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_NCHITTEST:
		return htTransparent
	case win.WM_CLOSE:
		markClosed(hwnd)
		return 0
	case win.WM_DESTROY:
		markClosed(hwnd)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func markClosed(hwnd win.HWND) {
	if v, ok := closeFlags.Load(hwnd); ok {
		v.(*atomic.Bool).Store(true)
	}
}

type nativeWindow struct {
	hwnd      win.HWND
	size      image.Point
	exitVK    byte
	closed    *atomic.Bool
	bgra      []byte
	closeOnce sync.Once
}

func openWindow(opts Options) (Window, error) {
	if err := registerClass(); err != nil {
		return nil, err
	}
	b := opts.Bounds
	// Created hidden; it is shown only after every style has been verified.
	hwnd := win.CreateWindowEx(
		overlayExStyle,
		syscall.StringToUTF16Ptr(overlayClsName),
		syscall.StringToUTF16Ptr(opts.Title),
		win.WS_POPUP,
		int32(b.Min.X), int32(b.Min.Y), int32(b.Dx()), int32(b.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("%w: CreateWindowEx failed", ErrWindowStyle)
	}
	w := &nativeWindow{
		hwnd:   hwnd,
		size:   b.Size(),
		exitVK: ParseVK(opts.ExitKey),
		closed: new(atomic.Bool),
		bgra:   make([]byte, b.Dx()*b.Dy()*4),
	}
	closeFlags.Store(hwnd, w.closed)

	fail := func(step string, err error) (Window, error) {
		closeFlags.Delete(hwnd)
		win.DestroyWindow(hwnd)
		return nil, fmt.Errorf("%w: %s: %v", ErrWindowStyle, step, err)
	}

	if r, _, err := procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, uintptr(opts.Alpha), lwaAlpha); r == 0 {
		return fail("SetLayeredWindowAttributes", err)
	}
	const required = wsExLayered | wsExTransparent | wsExTopmost
	ex := uint32(win.GetWindowLong(hwnd, gwlExStyle))
	if ex&required != required {
		return fail("GetWindowLong", fmt.Errorf("extended style 0x%x", ex))
	}
	if !win.SetWindowPos(hwnd, hwndTopmost, int32(b.Min.X), int32(b.Min.Y), int32(b.Dx()), int32(b.Dy()), swpShowWindow|swpNoActivate) {
		return fail("SetWindowPos", windows.GetLastError())
	}
	win.UpdateWindow(hwnd)
	procShowCursor.Call(0)
	return w, nil
}

func (w *nativeWindow) Present(c *Canvas) error {
	img := c.Image()
	if img.Bounds().Size() != w.size {
		return fmt.Errorf("overlay: canvas %v does not match window %v", img.Bounds().Size(), w.size)
	}
	RGBAToBGRA(w.bgra, img.Pix)

	dc := win.GetDC(w.hwnd)
	if dc == 0 {
		return fmt.Errorf("overlay: GetDC failed")
	}
	defer win.ReleaseDC(w.hwnd, dc)

	var bi bitmapInfo
	bi.Header.BiSize = uint32(unsafe.Sizeof(bi.Header))
	bi.Header.BiWidth = int32(w.size.X)
	bi.Header.BiHeight = -int32(w.size.Y) // top-down
	bi.Header.BiPlanes = 1
	bi.Header.BiBitCount = 32
	bi.Header.BiCompression = biRGB

	r, _, err := procSetDIBitsToDevice.Call(
		uintptr(dc), 0, 0, uintptr(w.size.X), uintptr(w.size.Y),
		0, 0, 0, uintptr(w.size.Y),
		uintptr(unsafe.Pointer(&w.bgra[0])), uintptr(unsafe.Pointer(&bi)), dibRGBColors,
	)
	if r == 0 {
		return fmt.Errorf("overlay: SetDIBitsToDevice: %v", err)
	}
	return nil
}

func (w *nativeWindow) PumpEvents() bool {
	var msg win.MSG
	quit := false
	for win.PeekMessage(&msg, 0, 0, 0, win.PM_REMOVE) {
		if msg.Message == win.WM_QUIT {
			quit = true
			continue
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	return quit || w.closed.Load()
}

func (w *nativeWindow) ExitKeyDown() bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(w.exitVK))
	return r&keyDownBit != 0
}

func (w *nativeWindow) Close() error {
	w.closeOnce.Do(func() {
		procShowCursor.Call(1)
		closeFlags.Delete(w.hwnd)
		win.DestroyWindow(w.hwnd)
	})
	return nil
}
