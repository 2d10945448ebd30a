// Package modelpicker shows a small window for choosing the vision model used
// for recognition. The list comes from the local Ollama instance; a custom
// model name can be typed when the wanted model is not listed.
package modelpicker

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Options configures the picker.
type Options struct {
	// Models is the initial list to offer.
	Models []string
	// Current preselects an entry when it is present in Models.
	Current string
	// Refresh re-queries the model list when the user asks for it. Optional.
	Refresh func() ([]string, error)
}

// Pick blocks until the user confirms or cancels. It runs a Fyne app and must
// be called from the main goroutine, at most once per process.
func Pick(opts Options) (model string, ok bool) {
	a := app.New()
	w := a.NewWindow("Select Vision Model")

	chosen := opts.Current
	confirmed := false

	sel := widget.NewSelect(opts.Models, func(s string) { chosen = s })
	if contains(opts.Models, opts.Current) {
		sel.SetSelected(opts.Current)
	}
	sel.PlaceHolder = "Pick a model"

	custom := widget.NewEntry()
	custom.SetPlaceHolder("Or type a model name, e.g. qwen3-vl:8b")

	status := widget.NewLabel("")

	refreshBtn := widget.NewButton("Refresh", func() {
		if opts.Refresh == nil {
			return
		}
		models, err := opts.Refresh()
		if err != nil {
			log.Printf("Model picker: refresh failed: %v", err)
			status.SetText("Could not reach Ollama: " + err.Error())
			return
		}
		status.SetText("")
		sel.Options = models
		if contains(models, chosen) {
			sel.SetSelected(chosen)
		} else {
			sel.ClearSelected()
		}
		sel.Refresh()
	})

	confirm := func() {
		if custom.Text != "" {
			chosen = custom.Text
		}
		if chosen == "" {
			status.SetText("Pick a model or type one")
			return
		}
		confirmed = true
		w.Close()
	}

	continueBtn := widget.NewButton("Continue", confirm)
	continueBtn.Importance = widget.HighImportance
	cancelBtn := widget.NewButton("Cancel", func() { w.Close() })

	custom.OnSubmitted = func(string) { confirm() }
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			w.Close()
		}
	})

	w.SetContent(container.NewVBox(
		widget.NewLabel("Vision model for text recognition:"),
		sel,
		custom,
		status,
		container.NewHBox(refreshBtn, cancelBtn, continueBtn),
	))
	w.Resize(fyne.NewSize(420, 220))
	w.CenterOnScreen()
	w.ShowAndRun()

	if !confirmed {
		return "", false
	}
	return chosen, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
