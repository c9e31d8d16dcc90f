package main

import (
	"flag"
	"fmt"

	"github.com/chewxy/math32"
)

type infoArgs struct {
	commonArgs
	stats bool
}

func createInfoCommand() *command {

	args := infoArgs{}

	flags := flag.NewFlagSet("info", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)
	flags.BoolVar(&args.stats, "stats", args.stats, "decode the pixel data and print luminance statistics")

	return &command{
		Name: "info",
		Help: "print the dimensions of radiance hdr images",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 {
				printCommandUsage(self, " file-glob...")
			}
			cargs = &args.commonArgs

			runInfo(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runInfo(args infoArgs, inputFiles []string) {
	for _, p := range inputFiles {
		softerr(printInfo(args, p))
	}
}

func printInfo(args infoArgs, p string) error {
	loader, closer, err := openHdr(p)
	if err != nil {
		return err
	}
	defer close(closer)

	fmt.Printf("%s: %dx%d\n", p, loader.Width, loader.Height)

	if !args.stats {
		return nil
	}

	img, err := loader.LoadImage()
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	min, max := math32.Inf(1), math32.Inf(-1)
	sum := float64(0)
	for _, px := range img.Data {
		// rec. 709 luma coefficients
		l := 0.2126*px.R + 0.7152*px.G + 0.0722*px.B
		if l < min {
			min = l
		}
		if l > max {
			max = l
		}
		sum += float64(l)
	}

	avg := float32(0)
	if len(img.Data) > 0 {
		avg = float32(sum / float64(len(img.Data)))
	}
	fmt.Printf("    luminance min %g, max %g, avg %g\n", min, max, avg)

	return nil
}
