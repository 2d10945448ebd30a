// Package hotkey registers a global key combination (e.g. "Ctrl+Alt+Q") and
// invokes a callback when all of its keys are held at once.
package hotkey

import (
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// Listen registers the hotkey and starts a background listener. The callback
// runs on the hook goroutine; it should hand off to its own event loop
// quickly.
func Listen(combo string, callback func()) {
	keys := parseHotkey(combo)

	var states []keyState
	for _, name := range keys {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			log.Printf("ERROR: cannot map key %q to rawcodes, hotkey may not work correctly", name)
			continue
		}
		states = append(states, keyState{name: name, rawcodes: rawcodes})
	}
	if len(states) == 0 {
		log.Printf("ERROR: no valid keys in hotkey configuration %q", combo)
		return
	}
	log.Printf("Hotkey listener configured for: %s", combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}

		var mu sync.Mutex
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				markKey(states, ev.Rawcode, true)
				all := allPressed(states)
				if all {
					// Reset so holding the combo fires once per press.
					for i := range states {
						states[i].pressed = false
					}
				}
				mu.Unlock()
				if all {
					log.Printf("Hotkey activated: %s", combo)
					if callback != nil {
						callback()
					}
				}
			case gohook.KeyUp:
				mu.Lock()
				markKey(states, ev.Rawcode, false)
				mu.Unlock()
			}
		}
	}()
}

func markKey(states []keyState, rawcode uint16, pressed bool) {
	for i := range states {
		for _, rc := range states[i].rawcodes {
			if rc == rawcode {
				states[i].pressed = pressed
				return
			}
		}
	}
}

func allPressed(states []keyState) bool {
	for i := range states {
		if !states[i].pressed {
			return false
		}
	}
	return true
}

// parseHotkey splits a combo like "Ctrl+Alt+Q" into normalized key names.
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(combo, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		switch part {
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes.
// Modifiers return both left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	case "space":
		return []uint16{32}
	case "enter", "return":
		return []uint16{13}
	case "esc", "escape":
		return []uint16{27}
	case "tab":
		return []uint16{9}
	}

	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c) - 'a' + 65} // VK_A..VK_Z
		case c >= '0' && c <= '9':
			return []uint16{uint16(c) - '0' + 48} // VK_0..VK_9
		}
	}

	// Function keys F1-F24 map to VK 112-135.
	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}

	log.Printf("WARNING: unknown key name %q, cannot map to rawcode", keyName)
	return nil
}
