package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/exp/slices"

	"radhdr/libhdr"
)

type sizeUnit string

const (
	unitPixel   = "px"
	unitPercent = "%"
)

type size struct {
	unit    sizeUnit
	pixel   int32
	percent float64
}

func (sz *size) String() string {
	switch sz.unit {
	case unitPercent:
		return fmt.Sprintf("%s%%", strconv.FormatFloat(sz.percent, 'f', -1, 64))
	case unitPixel:
		return fmt.Sprintf("%dpx", sz.pixel)
	default:
		return ""
	}
}

func (sz *size) Set(s string) error {
	s = strings.TrimSpace(s)
	var err error
	var px int64
	if strings.HasSuffix(s, unitPercent) {
		sz.unit = unitPercent
		sz.percent, err = strconv.ParseFloat(strings.TrimSuffix(s, unitPercent), 64)
	} else if strings.HasSuffix(s, unitPixel) {
		sz.unit = unitPixel
		px, err = strconv.ParseInt(strings.TrimSuffix(s, unitPixel), 10, 32)
		sz.pixel = int32(px)
	}
	return err
}

func (sz *size) Calc(width int) int {
	switch sz.unit {
	case unitPercent:
		return int(math.Round(sz.percent / 100 * float64(width)))
	case unitPixel:
		return int(sz.pixel)
	}
	return 0
}

type commonArgs struct {
	compress int
	out      string
	quiet    bool
	supress  bool
	ext      string
	suffix   string
}

type tonemapArgs struct {
	gamma float64
	scale float64
}

var cargs *commonArgs

type command struct {
	Run   func(self *command)
	Name  string
	Help  string
	Flags *flag.FlagSet
}

var commands = []*command{}

func printGeneralUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [arguments]\n\n", exe)
	fmt.Fprintf(os.Stderr, "The commands are:\n\n")
	longest := slices.MaxFunc(commands, func(a, b *command) int {
		return len(a.Name) - len(b.Name)
	})
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "    %*s%s\n", -len(longest.Name)-4, c.Name, c.Help)
	}
	fmt.Fprintln(os.Stderr, "")
	os.Exit(1)
}

func printCommandUsage(cmd *command, suffix string) {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s %s [arguments]%s\n\n", exe, cmd.Name, suffix)
	fmt.Fprintf(os.Stderr, "The arguments are:\n\n")
	cmd.Flags.SetOutput(os.Stderr)
	cmd.Flags.PrintDefaults()
	os.Exit(1)
}

func main() {
	commands = append(commands, createInfoCommand())
	commands = append(commands, createPngCommand())
	commands = append(commands, createPackCommand())
	commands = append(commands, createUnpackCommand())

	slices.SortFunc(commands, func(a, b *command) int {
		return strings.Compare(a.Name, b.Name)
	})

	if len(os.Args) < 2 {
		printGeneralUsage()
	}

	var cmd *command
	for _, c := range commands {
		if strings.EqualFold(c.Name, os.Args[1]) {
			cmd = c
			break
		}
	}
	if cmd == nil {
		printGeneralUsage()
	}

	err := cmd.Flags.Parse(os.Args[2:])
	harderr(err)

	cmd.Run(cmd)
}

func registerCommonFlags(flags *flag.FlagSet, args *commonArgs) {
	flags.IntVar(&args.compress, "compress", args.compress, "the compression level, 0 (none) or 1 (lz4)")
	flags.IntVar(&args.compress, "c", args.compress, "shorthand for compress")
	flags.StringVar(&args.out, "out", args.out, "the output directory")
	flags.StringVar(&args.out, "o", args.out, "shorthand for out")
	flags.BoolVar(&args.quiet, "quiet", args.quiet, "disables informational logging")
	flags.BoolVar(&args.quiet, "q", args.quiet, "shorthand for quiet")
	flags.BoolVar(&args.supress, "supress", args.supress, "disables soft error logging")
	flags.StringVar(&args.ext, "ext", args.ext, "the result file extension")
	flags.StringVar(&args.suffix, "suffix", args.suffix, "the result file suffix")
}

func registerTonemapFlags(flags *flag.FlagSet, args *tonemapArgs) {
	flags.Float64Var(&args.gamma, "gamma", args.gamma, "the gamma correction exponent")
	flags.Float64Var(&args.gamma, "g", args.gamma, "shorthand for gamma")
	flags.Float64Var(&args.scale, "scale", args.scale, "the exposure scale applied before gamma correction")
}

func setCommonArgs(args *commonArgs) {
	cargs = args
	if args.out == "" {
		var err error
		args.out, err = os.Getwd()
		harderr(err)
	}

	_, err := os.Stat(args.out)
	if err != nil {
		harderr(fmt.Errorf("cannot stat output directory: %w", err))
	}
}

func gatherInputFiles(globs []string) []string {
	matched := []string{}

	for _, g := range globs {
		m, err := filepath.Glob(g)
		softerr(err)
		matched = append(matched, m...)
	}

	return matched
}

// openHdr opens a radiance file and parses its header. Files with an
// .lz4 extension are decompressed on the fly.
func openHdr(p string) (*libhdr.Loader, io.Closer, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, nil, err
	}

	var src io.Reader = file
	if strings.EqualFold(filepath.Ext(p), ".lz4") {
		src = lz4.NewReader(file)
	}

	loader, err := libhdr.NewLoader(bufio.NewReaderSize(src, 1<<16))
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("%s: %w", p, err)
	}
	return loader, file, nil
}

// outFilename strips the input extension (and a trailing .lz4) and
// applies the configured suffix and extension.
func outFilename(p, defaultExt string) string {
	base := filepath.Base(p)
	if strings.EqualFold(filepath.Ext(base), ".lz4") {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	ext := cargs.ext
	if ext == "" {
		ext = defaultExt
	}
	return filepath.Join(cargs.out, base+cargs.suffix+ext)
}

func close(closer io.Closer) {
	closer.Close()
}

func softerr(err error) bool {
	if err != nil && !cargs.supress {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return true
	}
	return false
}

func harderr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
