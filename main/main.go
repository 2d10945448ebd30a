package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"neocr/clipboard"
	"neocr/config"
	"neocr/eventloop"
	"neocr/gui"
	"neocr/llm"
	"neocr/logutil"
	"neocr/modelpicker"
	"neocr/notification"
	"neocr/session"
	"neocr/singleinstance"
	"neocr/tray"
)

// Exit codes: 0 success, 2 user cancelled the selection (silent), 1 error.
const (
	exitSuccess   = 0
	exitError     = 1
	exitCancelled = 2
)

// normalizeFlagDashes maps GNU-style --flag to Go's -flag.
func normalizeFlagDashes() {
	known := []string{"resident", "stdout", "choose-model"}
	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		for _, name := range known {
			if arg == "--"+name || strings.HasPrefix(arg, "--"+name+"=") {
				os.Args[i] = arg[1:]
				break
			}
		}
	}
}

// enableDPIAwareness sets per-monitor DPI awareness on Windows so the overlay
// coordinates match physical pixels on scaled displays.
func enableDPIAwareness() {
	if runtime.GOOS != "windows" {
		return
	}
	// Shcore.SetProcessDpiAwareness (Win 8.1+), else user32.SetProcessDPIAware.
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		_, _, _ = setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		return
	}
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		_, _, _ = setProcessDPIAware.Call()
	}
}

func main() {
	// DPI awareness must be set before any window or metric query.
	enableDPIAwareness()

	// The overlay and the tray need a stable OS thread.
	runtime.LockOSThread()

	normalizeFlagDashes()
	resident := flag.Bool("resident", false, "Stay in the tray and capture on a global hotkey")
	stdout := flag.Bool("stdout", false, "Print recognized text to stdout instead of only the clipboard")
	chooseModel := flag.Bool("choose-model", false, "Pick the vision model in a dialog before capturing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(exitError)
	}
	logutil.Setup(cfg.EnableFileLogging)

	llm.Init(&llm.Config{BaseURL: cfg.OllamaURL, Model: cfg.Model})

	if *chooseModel {
		model, ok := modelpicker.Pick(modelpicker.Options{
			Models:  llm.ListVisionModels(),
			Current: cfg.Model,
			Refresh: func() ([]string, error) {
				if err := llm.Ping(); err != nil {
					return nil, err
				}
				return llm.ListVisionModels(), nil
			},
		})
		if !ok {
			os.Exit(exitCancelled)
		}
		cfg.Model = model
		llm.Init(&llm.Config{BaseURL: cfg.OllamaURL, Model: cfg.Model})
		if err := config.SaveLastModel(model); err != nil {
			log.Printf("Could not persist model choice: %v", err)
		}
	}

	if err := llm.Ping(); err != nil {
		notification.ShowBlockingError("Ollama unavailable",
			fmt.Sprintf("Startup check failed: %v\n\nIs Ollama running at %s?", err, cfg.OllamaURL))
		fmt.Fprintf(os.Stderr, "Ollama unavailable: %v\n", err)
		os.Exit(exitError)
	}
	log.Printf("Ollama ping succeeded, using model %s", cfg.Model)

	if err := clipboard.Init(); err != nil {
		if !*stdout {
			fmt.Fprintf(os.Stderr, "Failed to initialize clipboard: %v\n", err)
			os.Exit(exitError)
		}
		// Stdout mode can live without a clipboard.
		log.Printf("Clipboard unavailable, stdout only: %v", err)
	}

	if *resident {
		os.Exit(runResident(cfg))
	}
	os.Exit(runOnce(cfg, *stdout))
}

// runOnce performs a single capture-recognize-copy cycle.
func runOnce(cfg *config.Config, toStdout bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var target session.ResultTarget = session.ClipboardTarget{}
	if toStdout {
		target = teeTarget{session.StdoutTarget{}, session.ClipboardTarget{}}
	}

	res, err := session.Execute(ctx, session.Options{
		Deadline:     time.Duration(cfg.OCRDeadlineSec) * time.Second,
		SelectRegion: gui.StartRegionSelection,
		Target:       target,
	})
	if errors.Is(err, session.ErrSelectionCancelled) {
		// Deliberate user action; exit silently.
		return exitCancelled
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "neocr: %v\n", err)
		notification.Show("NeOCR error", err.Error())
		return exitError
	}

	log.Printf("OCR result: %s", logutil.Sanitize(res.Text))
	if !toStdout {
		notification.ShowOCRResult(res.Text)
	}
	if err := config.SaveLastModel(cfg.Model); err != nil {
		log.Printf("Could not persist model choice: %v", err)
	}
	return exitSuccess
}

// runResident keeps the tool in the tray, capturing on the global hotkey.
func runResident(cfg *config.Config) int {
	lease, err := singleinstance.Acquire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "neocr: %v\n", err)
		return exitError
	}
	defer lease.Close()

	loop := eventloop.New(cfg)
	tooltip := fmt.Sprintf("NeOCR - press %s to capture", cfg.Hotkey)
	loop.SetDefaultTooltip(tooltip)
	loop.StartHotkey(cfg.Hotkey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	// Tray runs off the main thread; the event loop stays on the locked main
	// thread because it opens the selection overlay.
	go tray.Run(tray.Config{
		Tooltip:   tooltip,
		OnCapture: loop.RequestCapture,
		OnExit:    cancel,
	})
	defer tray.Quit()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return exitError
	}
	return exitSuccess
}

// teeTarget prints to stdout and also fills the clipboard.
type teeTarget struct {
	out session.StdoutTarget
	cb  session.ClipboardTarget
}

func (t teeTarget) OnSuccess(text string) error {
	if err := t.out.OnSuccess(text); err != nil {
		return err
	}
	// Best-effort: stdout already has the text.
	if err := t.cb.OnSuccess(text); err != nil {
		log.Printf("clipboard write failed: %v", err)
	}
	return nil
}

func (t teeTarget) OnFailure(err error) error { return nil }
