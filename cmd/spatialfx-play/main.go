package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/spatialfx-go"
	"github.com/cbegin/spatialfx-go/internal/codec"
	"github.com/cbegin/spatialfx-go/internal/settings"
)

const help = `commands:
  play | pause | stop
  seek <duration>        e.g. seek 1m30s
  mode <8d-spatial|bilateral|emdr|haas>
  set <field> <value>    e.g. set travelSpeed 70, set movementShape circular
  undo | redo | reset
  save <path>            write current settings as JSON
  quit`

func main() {
	var (
		inPath       = flag.String("in", "", "input audio file (wav, mp3, ogg)")
		modeName     = flag.String("mode", "8d-spatial", "processing mode: 8d-spatial|bilateral|emdr|haas")
		settingsPath = flag.String("settings", "", "settings JSON file; overrides -mode")
		seek         = flag.Duration("seek", 0, "start position")
		showFrames   = flag.Bool("frames", false, "log trajectory frames in 8d-spatial mode")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	s := spatialfx.DefaultSettings(spatialfx.Mode(*modeName))
	if *settingsPath != "" {
		data, err := os.ReadFile(*settingsPath)
		if err != nil {
			log.Fatal(err)
		}
		if s, err = settings.Unmarshal(data); err != nil {
			log.Fatal(err)
		}
	} else if !s.Mode.Valid() || string(s.Mode) != *modeName {
		log.Fatalf("invalid -mode %q (expected 8d-spatial|bilateral|emdr|haas)", *modeName)
	}

	buf, err := codec.DecodeFile(*inPath)
	if err != nil {
		log.Fatal(err)
	}

	var lastSecond time.Duration = -1
	cb := spatialfx.Callbacks{
		OnStateChange: func(prev, next spatialfx.State) {
			log.WithFields(logrus.Fields{"from": prev.String(), "to": next.String()}).Info("state")
		},
		OnTimeUpdate: func(pos, dur time.Duration) {
			if sec := pos.Truncate(time.Second); sec != lastSecond {
				lastSecond = sec
				fmt.Printf("\r%s / %s ", sec, dur.Truncate(time.Second))
			}
		},
		OnSettingsChange: func(s spatialfx.Settings) {
			log.WithField("mode", string(s.Mode)).Debug("settings changed")
		},
		OnError: func(err error) {
			log.WithError(err).Error("engine error")
		},
	}
	if *showFrames {
		cb.OnFrame = func(f spatialfx.Frame) {
			log.WithFields(logrus.Fields{"x": f.X, "y": f.Y, "position": f.Position}).Debug("frame")
		}
	}

	e, err := spatialfx.NewEngine(
		spatialfx.WithSampleRate(buf.SampleRate),
		spatialfx.WithLogger(log),
		spatialfx.WithInitialSettings(s),
		spatialfx.WithCallbacks(cb),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer e.Dispose()
	if err := e.Initialize(); err != nil {
		log.Fatal(err)
	}
	if err := e.LoadAudio(buf); err != nil {
		log.Fatal(err)
	}
	if *seek > 0 {
		if err := e.Seek(*seek); err != nil {
			log.Fatal(err)
		}
	}
	if err := e.Play(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()
	ended := waitChan(e)

	fmt.Println(help)
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case <-ended:
			fmt.Println("\nplayback ended")
			if lines == nil {
				return
			}
			ended = nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				if ended == nil {
					return
				}
				continue
			}
			quit, err := run(e, strings.Fields(line))
			if err != nil {
				log.WithError(err).Warn("command failed")
			}
			if quit {
				return
			}
			if ended == nil && e.State() == spatialfx.StatePlaying {
				ended = waitChan(e)
			}
		}
	}
}

// waitChan returns a channel closed when the current playback ends.
func waitChan(e *spatialfx.Engine) chan struct{} {
	ch := make(chan struct{})
	go func() {
		e.Wait()
		close(ch)
	}()
	return ch
}

func run(e *spatialfx.Engine, args []string) (quit bool, err error) {
	if len(args) == 0 {
		return false, nil
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	switch args[0] {
	case "play":
		return false, e.Play()
	case "pause":
		return false, e.Pause()
	case "stop":
		return false, e.Stop()
	case "seek":
		d, err := time.ParseDuration(arg(1))
		if err != nil {
			return false, err
		}
		return false, e.Seek(d)
	case "mode":
		return false, e.SetMode(spatialfx.Mode(arg(1)))
	case "set":
		field := spatialfx.Field(arg(1))
		if settings.IsChoice(field) {
			return false, e.UpdateChoice(field, arg(2))
		}
		v, err := strconv.ParseFloat(arg(2), 64)
		if err != nil {
			return false, err
		}
		return false, e.UpdateParameter(field, v)
	case "undo":
		_, err := e.Undo()
		return false, err
	case "redo":
		_, err := e.Redo()
		return false, err
	case "reset":
		return false, e.ResetSettings()
	case "save":
		data, err := settings.Marshal(e.Settings())
		if err != nil {
			return false, err
		}
		return false, os.WriteFile(arg(1), data, 0o644)
	case "quit", "exit":
		return true, nil
	default:
		fmt.Println(help)
		return false, nil
	}
}
