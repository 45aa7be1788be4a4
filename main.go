package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/clipboard"
	"murmur/config"
	"murmur/encoder"
	"murmur/hotkey"
	"murmur/log"
	"murmur/router"
	"murmur/session"
	"murmur/shutdown"
	"murmur/store"
	"murmur/transcriber"
)

var version = "dev"

func run() {
	configFlag := flag.String("config", "", "Config file path (default: OS config dir)")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	langFlag := flag.String("lang", "", "Language code for transcription (empty = auto-detect)")
	formatFlag := flag.String("format", "", "Audio upload format: flac or wav")
	autoPasteFlag := flag.Bool("autopaste", false, "Auto-paste to focused window after transcription")
	muteFlag := flag.Bool("mute", false, "Disable recording cue sounds")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("MURMUR_CONFIG")
	}
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags beat the config file, but only when given explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lang":
			cfg.Language = *langFlag
		case "format":
			cfg.Format = *formatFlag
		case "autopaste":
			cfg.AutoPaste = *autoPasteFlag
		case "mute":
			cfg.Mute = *muteFlag
		}
	})

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart("local-first", cfg.Format, cfg.Language)

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating data directory: %v\n", err)
		os.Exit(1)
	}
	gw, err := store.Open(filepath.Join(dataDir, "murmur.db"))
	if err != nil {
		log.Errorf("store open error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: opening store: %v\n", err)
		os.Exit(1)
	}
	defer gw.Close()

	timeout := time.Duration(cfg.TranscribeTimeoutMS) * time.Millisecond
	local := transcriber.NewLocal(cfg.Local.BaseURL, timeout)
	var remote transcriber.Transcriber
	if key := os.Getenv(cfg.Remote.APIKeyEnv); key != "" {
		remote = transcriber.NewRemote(cfg.Remote.BaseURL, key, cfg.Remote.Model, timeout)
	} else {
		log.Warnf("%s not set, remote fallback disabled", cfg.Remote.APIKeyEnv)
	}
	sup := router.NewSupervisor(router.SupervisorConfig{
		BaseURL:      cfg.Local.BaseURL,
		Command:      cfg.Local.Command,
		Args:         cfg.Local.Args,
		StartupWait:  time.Duration(cfg.Local.StartupWaitMS) * time.Millisecond,
		ProbeTimeout: time.Duration(cfg.Local.ProbeTimeoutMS) * time.Millisecond,
	})
	rt := router.New(sup, local, remote)
	defer sup.Shutdown()

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer actx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := actx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(actx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	captureDevice, err := actx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	encode, err := encoder.New(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	recorder := audio.NewRecorder(captureDevice, encode)

	opts := transcriber.Options{
		Language:        cfg.Language,
		InverseTextNorm: cfg.InverseTextNorm,
	}

	if cfg.Mute {
		beep.Mute()
	} else {
		go beep.Init()
	}

	var transcriptCount atomic.Int64
	var prevState atomic.Int32

	var ctl *session.Controller
	ctl = session.New(session.Config{
		HistoryCapacity: cfg.HistoryCapacity,
		PinnedCapacity:  cfg.PinnedCapacity,
		Store:           gw,
		Capture:         recorder,
		Transcribe: func(ctx context.Context, blob audio.Blob) (string, error) {
			return rt.Transcribe(ctx, blob, opts)
		},
		Timeout:   timeout,
		MinFrames: encoder.SampleRate / 10,
		OnUpdate: func() {
			if ctl != nil {
				cur := int32(ctl.State())
				prev := prevState.Swap(cur)
				if cur == int32(session.StateRecording) && prev != cur {
					go beep.PlayStart()
				} else if prev == int32(session.StateRecording) && prev != cur {
					go beep.PlayEnd()
				}
			}
			tuiSend(RefreshMsg{})
		},
		OnNotice: func(text string) {
			tuiSend(NoticeMsg{Text: text})
		},
		OnError: func(error) {
			go beep.PlayError()
		},
		OnTranscript: func(buffer string) {
			transcriptCount.Add(1)
			if err := clipboard.Copy(buffer); err != nil {
				log.Warnf("clipboard copy failed: %v", err)
				return
			}
			if cfg.AutoPaste {
				if err := clipboard.Paste(); err != nil {
					log.Warnf("auto-paste failed: %v", err)
				}
			}
		},
	})
	defer ctl.Close()

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Fprintf(os.Stderr, "Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()
	go func() {
		for range hk.Toggled() {
			log.Info("hotkey_toggle")
			ctl.ToggleRecording()
		}
	}()

	statusLine := fmt.Sprintf("[%s | %s]", cfg.Format, cfg.Language)
	tuiMu.Lock()
	tuiProgram = NewTUIProgram(ctl, statusLine)
	tuiMu.Unlock()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		tuiProgram.Quit()
	}()

	if _, err := tuiProgram.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if n := transcriptCount.Load(); n > 0 {
		log.SessionEnd(int(n))
	}
	log.Close()
}
