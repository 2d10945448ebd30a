//go:build windows

package gui

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"neocr/screenshot"
	"neocr/selector"
)

type platformSelector struct{}

const (
	overlayKeyPollTimerID    = 1
	overlayKeyPollIntervalMs = 25
)

var (
	user32DLL                    = windows.NewLazySystemDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState         = user32DLL.NewProc("GetAsyncKeyState")
)

// Overlay state for the single active session. The overlay is modal and the
// window procedure is a C callback, so this is package-level by necessity;
// only one session exists at a time.
var (
	overlaySession   *selector.Session
	overlayImage     *image.RGBA
	overlayLiveRect  image.Rectangle
	overlayDragging  bool
	overlayEscLatch  bool
	virtualScreenX   int32
	virtualScreenY   int32
	overlayCrosshair win.HCURSOR
)

// Select creates a fullscreen overlay over the captured virtual screen and
// runs one drag-selection session on it.
func (platformSelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	// Virtual screen metrics cover all monitors.
	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
	vw := win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)
	vh := win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)
	log.Printf("Virtual screen: x=%d y=%d w=%d h=%d", vx, vy, vw, vh)
	virtualScreenX = vx
	virtualScreenY = vy

	img, err := screenshot.Capture()
	if err != nil {
		return screenshot.Region{}, false, fmt.Errorf("failed to capture screen: %v", err)
	}

	sess, err := selector.NewSession(img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return screenshot.Region{}, false, err
	}

	overlaySession = sess
	overlayImage = img
	overlayLiveRect = image.Rectangle{}
	overlayDragging = false
	overlayEscLatch = false
	defer func() {
		overlaySession = nil
		overlayImage = nil
	}()

	if overlayCrosshair == 0 {
		overlayCrosshair = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
	}

	// Unique class name per session avoids conflicts with stale registrations.
	className := syscall.StringToUTF16Ptr(fmt.Sprintf("NeocrOverlay_%d", time.Now().UnixNano()))
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       overlayCrosshair,
		HbrBackground: 0, // we paint the captured screen ourselves
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		return screenshot.Region{}, false, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		syscall.StringToUTF16Ptr("Select region - drag to select, ESC cancels"),
		win.WS_POPUP|win.WS_VISIBLE,
		vx, vy, vw, vh,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return screenshot.Region{}, false, fmt.Errorf("failed to create overlay window")
	}
	// Torn down on every exit path: confirmed, cancelled, or error.
	defer func() {
		win.KillTimer(hwnd, overlayKeyPollTimerID)
		win.DestroyWindow(hwnd)
	}()

	win.ShowWindow(hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)
	win.UpdateWindow(hwnd)

	// Async key polling backs up WM_KEYDOWN: ESC must work even when focus
	// drifts to another window.
	if win.SetTimer(hwnd, overlayKeyPollTimerID, overlayKeyPollIntervalMs, 0) == 0 {
		log.Printf("Failed to start keyboard poll timer")
	}

	var msg win.MSG
	for !sess.Done() {
		if ctx.Err() != nil {
			sess.Escape()
			break
		}
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 { // WM_QUIT or error
			sess.Escape()
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	outcome, _ := sess.Outcome()
	if outcome.Cancelled {
		return screenshot.Region{}, true, nil
	}

	region := screenshot.FromRect(outcome.Rect.Add(image.Pt(int(virtualScreenX), int(virtualScreenY))))
	log.Printf("Final region with virtual screen offset: %+v", region)
	return region, false, nil
}

// overlayWndProc translates window messages into selector.Session events.
func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	sess := overlaySession
	if sess == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_LBUTTONDOWN:
		p := lparamPoint(lParam)
		win.SetCapture(hwnd)
		overlayDragging = true
		sess.Press(p)
		overlayLiveRect = image.Rectangle{Min: p, Max: p}
		win.InvalidateRect(hwnd, nil, false)
		win.UpdateWindow(hwnd)
		return 0

	case win.WM_MOUSEMOVE:
		if overlayDragging {
			if live, ok := sess.Move(lparamPoint(lParam)); ok {
				overlayLiveRect = live
				win.InvalidateRect(hwnd, nil, false)
				win.UpdateWindow(hwnd)
			}
		}
		return 0

	case win.WM_LBUTTONUP:
		if overlayDragging {
			win.ReleaseCapture()
			overlayDragging = false
			sess.Release(lparamPoint(lParam))
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		if overlayImage != nil {
			drawScreenBackground(hdc, overlayImage)
		}
		drawSelectionHints(hdc)
		if overlayDragging {
			drawSelectionRectangle(hdc, overlayLiveRect)
		}
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_SETCURSOR:
		if overlayCrosshair != 0 {
			win.SetCursor(overlayCrosshair)
		}
		return 1

	case win.WM_TIMER:
		if wParam == overlayKeyPollTimerID {
			pollEscapeKey(sess)
		}
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			overlayEscLatch = true
			sess.Escape()
		}
		return 0

	case win.WM_KEYUP, win.WM_SYSKEYUP:
		if wParam == win.VK_ESCAPE {
			overlayEscLatch = false
		}
		return 0

	case win.WM_NCHITTEST:
		// Force all points to client area so the window receives mouse events.
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		win.KillTimer(hwnd, overlayKeyPollTimerID)
		// No PostQuitMessage: Select returns as soon as the session is done,
		// and a leftover WM_QUIT would cancel the next session instantly.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func lparamPoint(lParam uintptr) image.Point {
	x := int(int16(win.LOWORD(uint32(lParam))))
	y := int(int16(win.HIWORD(uint32(lParam))))
	return image.Pt(x, y)
}

func pollEscapeKey(sess *selector.Session) {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(win.VK_ESCAPE))
	s := uint16(state)
	isDown := s&0x8000 != 0
	pressedSinceLastPoll := s&0x0001 != 0
	if !overlayEscLatch && (isDown || pressedSinceLastPoll) {
		log.Printf("Escape detected via async polling")
		sess.Escape()
	}
	overlayEscLatch = isDown
}

func drawSelectionRectangle(hdc win.HDC, rect image.Rectangle) {
	gdi32 := windows.NewLazySystemDLL("gdi32.dll")
	createPen := gdi32.NewProc("CreatePen")
	rectangle := gdi32.NewProc("Rectangle")

	redPen, _, _ := createPen.Call(0, 3, 0x0000FF)
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(redPen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))

	rectangle.Call(uintptr(hdc), uintptr(rect.Min.X), uintptr(rect.Min.Y), uintptr(rect.Max.X), uintptr(rect.Max.Y))

	win.SelectObject(hdc, oldPen)
	win.SelectObject(hdc, oldBrush)
	win.DeleteObject(win.HGDIOBJ(redPen))
}

func drawSelectionHints(hdc win.HDC) {
	hint := "Click and drag to select a region, ESC cancels"
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(0x00FFFF))
	win.TextOut(hdc, 16, 16, syscall.StringToUTF16Ptr(hint), int32(len(hint)))
}

// drawScreenBackground blits the captured screen into the overlay window.
func drawScreenBackground(hdc win.HDC, img *image.RGBA) {
	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // negative for top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}

	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	// Copy RGBA rows into the DWORD-aligned BGRA DIB.
	stride := (((int32(width)*32 + 31) &^ 31) / 8)
	for y := 0; y < height; y++ {
		rowPtr := (*[1 << 29]byte)(unsafe.Pointer(uintptr(pBits) + uintptr(y)*uintptr(stride)))
		srcRow := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			rowPtr[x*4] = srcRow[x*4+2]   // B
			rowPtr[x*4+1] = srcRow[x*4+1] // G
			rowPtr[x*4+2] = srcRow[x*4]   // R
			rowPtr[x*4+3] = srcRow[x*4+3] // A
		}
	}

	win.BitBlt(hdc, 0, 0, int32(width), int32(height), memDC, 0, 0, win.SRCCOPY)
}
