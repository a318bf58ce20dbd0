package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/videograb/internal/extract"
	"github.com/go-scripts/videograb/internal/metadata"
	"github.com/go-scripts/videograb/internal/writer"
)

// CLI flags structure
type CLIFlags struct {
	URL         string        `arg:"" help:"Page URL to scan for videos"`
	Single      bool          `help:"Treat the URL as one known video and fetch its metadata without a browser" short:"s"`
	MaxPages    int           `help:"Maximum pages to follow through pagination" default:"1" short:"p"`
	MaxVideos   int           `help:"Stop after this many unique videos" default:"50" short:"n"`
	MinDuration float64       `help:"Drop videos known to be shorter than this many seconds" default:"0"`
	Profile     string        `help:"Browser profile: chrome, firefox, safari, mobile" default:"chrome"`
	AgeVerified bool          `help:"Confirm age verification for adult sites"`
	Timeout     time.Duration `help:"Navigation timeout per page" default:"30s"`
	Output      string        `help:"Directory to write the result JSON into; prints to stdout when empty" short:"o"`
	Debug       bool          `help:"Enable debug logging" default:"false"`
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("videograb"),
		kong.Description("Discover and extract video metadata from web pages."),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if flags.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)

	if err := run(flags, logger); err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

func run(flags CLIFlags, logger *log.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), runDeadline(flags))
	defer cancel()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " scanning " + flags.URL
	s.Start()

	var payload any
	var err error
	if flags.Single {
		s.Suffix = " fetching " + flags.URL
		payload, err = metadata.NewClient().ExtractSingleVideo(ctx, flags.URL)
	} else {
		cfg := buildConfig(flags)
		payload, err = extract.Extract(ctx, flags.URL, cfg)
	}
	s.Stop()
	if err != nil {
		// A partial result is still worth reporting.
		if result, ok := payload.(*extract.Result); !ok || result == nil || len(result.Videos) == 0 {
			return err
		}
		logger.Warn("extraction incomplete", "error", err)
	}

	if flags.Output != "" {
		return writeToDir(flags, payload, logger)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeToDir(flags CLIFlags, payload any, logger *log.Logger) error {
	fw, err := writer.New(flags.Output)
	if err != nil {
		return err
	}
	var path string
	switch v := payload.(type) {
	case *extract.Result:
		path, err = fw.WriteResult(v)
	case *metadata.Video:
		path, err = fw.WriteVideo(v)
	default:
		return fmt.Errorf("unexpected result type %T", payload)
	}
	if err != nil {
		return err
	}
	logger.Info("result written", "path", path)
	return nil
}

func buildConfig(flags CLIFlags) extract.Config {
	cfg := extract.DefaultConfig()
	cfg.MaxPages = flags.MaxPages
	cfg.MaxVideos = flags.MaxVideos
	cfg.MinVideoDuration = flags.MinDuration
	cfg.Profile = extract.BrowserProfile(flags.Profile)
	cfg.AgeVerification = flags.AgeVerified
	cfg.NavigationTimeout = flags.Timeout
	return cfg
}

// runDeadline leaves room for every page plus browser startup.
func runDeadline(flags CLIFlags) time.Duration {
	pages := flags.MaxPages
	if pages < 1 {
		pages = 1
	}
	return time.Duration(pages)*flags.Timeout + 2*time.Minute
}
