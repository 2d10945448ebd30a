package hotkey

import (
	"reflect"
	"testing"
)

func TestParseHotkey(t *testing.T) {
	cases := []struct {
		combo string
		want  []string
	}{
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"ctrl + shift + t", []string{"ctrl", "shift", "t"}},
		{"Win+F5", []string{"cmd", "f5"}},
		{"Super+X", []string{"cmd", "x"}},
		{"", nil},
	}
	for _, tc := range cases {
		if got := parseHotkey(tc.combo); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseHotkey(%q) = %v, want %v", tc.combo, got, tc.want)
		}
	}
}

func TestKeyNameToRawcodes(t *testing.T) {
	cases := []struct {
		name string
		want []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"cmd", []uint16{91, 92}},
		{"a", []uint16{65}},
		{"q", []uint16{81}},
		{"z", []uint16{90}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},
		{"space", []uint16{32}},
		{"escape", []uint16{27}},
		{"unknown-key", nil},
		{"f25", nil},
		{"f0", nil},
	}
	for _, tc := range cases {
		if got := keyNameToRawcodes(tc.name); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("keyNameToRawcodes(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMarkKeyAndAllPressed(t *testing.T) {
	states := []keyState{
		{name: "ctrl", rawcodes: []uint16{162, 163}},
		{name: "q", rawcodes: []uint16{81}},
	}

	if allPressed(states) {
		t.Fatal("no keys pressed yet")
	}

	markKey(states, 163, true) // right ctrl counts
	if allPressed(states) {
		t.Fatal("only one key pressed")
	}

	markKey(states, 81, true)
	if !allPressed(states) {
		t.Fatal("both keys pressed, combination should fire")
	}

	markKey(states, 163, false)
	if allPressed(states) {
		t.Fatal("released modifier should clear the combination")
	}

	// Unknown rawcodes are ignored.
	markKey(states, 999, true)
	if states[0].pressed {
		t.Error("unknown rawcode changed state")
	}
}
