package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
)

// The icon is drawn at startup rather than embedded: a dashed selection
// rectangle on a transparent background, 16x16.
var iconOnce = sync.OnceValue(renderIcon)

func iconBytes() []byte {
	return iconOnce()
}

func renderIcon() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	border := color.RGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}

	// Dashed rectangle from (2,3) to (13,12), 2px-on 1px-off.
	dash := func(i int) bool { return i%3 != 2 }
	for x := 2; x <= 13; x++ {
		if dash(x) {
			img.SetRGBA(x, 3, border)
			img.SetRGBA(x, 12, border)
		}
	}
	for y := 3; y <= 12; y++ {
		if dash(y) {
			img.SetRGBA(2, y, border)
			img.SetRGBA(13, y, border)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return wrapICO(buf.Bytes(), 16)
	}
	return buf.Bytes()
}

// wrapICO wraps PNG data in a single-entry ICO container, which Windows
// accepts for 32-bit icons since Vista.
func wrapICO(pngData []byte, size byte) []byte {
	var buf bytes.Buffer
	// ICONDIR: reserved, type=1 (icon), count=1.
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY.
	buf.WriteByte(size) // width
	buf.WriteByte(size) // height
	buf.WriteByte(0)    // palette colors
	buf.WriteByte(0)    // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // color planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16)) // data offset
	buf.Write(pngData)
	return buf.Bytes()
}
