package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/spatialfx-go"
	"github.com/cbegin/spatialfx-go/internal/codec"
	"github.com/cbegin/spatialfx-go/internal/settings"
)

func main() {
	var (
		inPath       = flag.String("in", "", "input audio file (wav, mp3, ogg)")
		outPath      = flag.String("out", "", "output wav file")
		modeName     = flag.String("mode", "8d-spatial", "processing mode: 8d-spatial|bilateral|emdr|haas")
		settingsPath = flag.String("settings", "", "settings JSON file; overrides -mode")
		bitDepth     = flag.Int("bits", 16, "output bit depth (16|24|32)")
		start        = flag.Duration("start", 0, "trim start")
		end          = flag.Duration("end", 0, "trim end (0 = end of input)")
		blockSize    = flag.Int("block", spatialfx.DefaultBlockSize, "render block size in frames")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if *inPath == "" || *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	s, err := loadSettings(*settingsPath, *modeName)
	if err != nil {
		log.Fatal(err)
	}
	buf, err := codec.DecodeFile(*inPath)
	if err != nil {
		log.Fatal(err)
	}
	buf = buf.Trim(*start, *end)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	began := time.Now()
	r := spatialfx.NewRenderer(spatialfx.WithRendererLogger(log), spatialfx.WithBlockSize(*blockSize))
	out, err := r.Render(ctx, buf, s)
	if err != nil {
		log.Fatal(err)
	}
	if err := codec.WriteWAVFile(*outPath, out, *bitDepth); err != nil {
		log.Fatal(err)
	}
	log.WithFields(logrus.Fields{
		"mode":     string(s.Mode),
		"duration": out.Duration(),
		"channels": out.NumChannels(),
		"peak":     out.Peak(),
		"elapsed":  time.Since(began).Round(time.Millisecond),
	}).Infof("wrote %s", *outPath)
}

func loadSettings(path, mode string) (spatialfx.Settings, error) {
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return spatialfx.Settings{}, err
		}
		return settings.Unmarshal(data)
	}
	m := spatialfx.Mode(strings.ToLower(strings.TrimSpace(mode)))
	if !m.Valid() {
		return spatialfx.Settings{}, fmt.Errorf("invalid -mode %q (expected 8d-spatial|bilateral|emdr|haas)", mode)
	}
	return spatialfx.DefaultSettings(m), nil
}
