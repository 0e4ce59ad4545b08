// Command geotool runs the citymap geometry helpers from the command line.
package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/logging"
)

// Options are the flags shared by every command.
type Options struct {
	Output   string `short:"o" long:"output" description:"Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`
	LogLevel string `long:"log-level" description:"Log level for stderr diagnostics" default:"warn"`

	Distance DistanceCommand `command:"distance" description:"Great-circle distance between two lon,lat points" long-description:"Points are lon,lat pairs. Put -- before points with a negative longitude, e.g. geotool distance -- -2.935,43.26 -2.94,43.27"`
	Segments SegmentsCommand `command:"segments" description:"Segment lengths of a coordinate list read from a file or stdin"`
	Format   FormatCommand   `command:"format" description:"Render meters for display"`
	WKT      WKTCommand      `command:"wkt" description:"Read a POINT or LINESTRING out of WKT"`
	Polyline PolylineCommand `command:"polyline" description:"Encode coordinates as a polyline, or decode one"`
	Shp      ShpCommand      `command:"shp" description:"Print WKT and lengths of the shapes in an ESRI shapefile"`
}

// env is what a command needs from the process.
type env struct {
	opts   *Options
	geo    *usecases.GeometryService
	stdin  io.Reader
	stdout io.Writer
	logger *slog.Logger
}

// cur is the environment of the running command.
var cur *env

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

// run parses args and executes the selected command.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts Options
	cur = &env{
		opts:   &opts,
		geo:    usecases.NewGeometryService(),
		stdin:  stdin,
		stdout: stdout,
		logger: logging.New(stderr, "warn", "text"),
	}

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		cur.logger = logging.New(stderr, opts.LogLevel, "text")
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	_, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			_, _ = io.WriteString(stdout, flagsErr.Message+"\n")
		} else {
			cur.logger.Error("geotool failed", "error", err)
		}
	}
	return err
}
