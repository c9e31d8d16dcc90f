package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/nfnt/resize"

	"radhdr/libio"
)

type pngArgs struct {
	commonArgs
	tonemapArgs
	size size
}

func createPngCommand() *command {

	args := pngArgs{
		tonemapArgs: tonemapArgs{
			gamma: 2.2,
			scale: 1.0,
		},
		size: size{
			unit:    unitPercent,
			percent: 100,
		},
	}

	flags := flag.NewFlagSet("png", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)
	registerTonemapFlags(flags, &args.tonemapArgs)
	flags.Var(&args.size, "size", "the result width, either % of the input width or absolute px")
	flags.Var(&args.size, "s", "shorthand for size")

	return &command{
		Name: "png",
		Help: "tonemap radiance hdr images to png",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.gamma <= 0 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runPng(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runPng(args pngArgs, inputFiles []string) {
	success := 0
	start := time.Now()
	for i, p := range inputFiles {
		if !cargs.quiet {
			fmt.Printf("Processing file %d/%d %q ...\n", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
		}
		err := convertPngFile(args, p)
		softerr(err)
		if err == nil {
			success++
		}
	}
	if !cargs.quiet {
		took := float32(time.Since(start).Milliseconds()) / 1000
		fmt.Printf("Converted %d/%d files in %.3f seconds\n", success, len(inputFiles), took)
	}
}

func convertPngFile(args pngArgs, p string) error {
	loader, closer, err := openHdr(p)
	if err != nil {
		return err
	}
	defer close(closer)

	img, err := loader.LoadImage()
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	hdr := libio.NewFloatImage(img.Pix(), 3, img.Width, img.Height)
	rgba := hdr.ToIntImage(float32(args.gamma), float32(args.scale)).ToRGBA()

	outFilename := outFilename(p, ".png")
	outFile, err := os.OpenFile(outFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer close(outFile)

	if !cargs.quiet {
		fmt.Printf("Writing %q ...\n", filepath.ToSlash(filepath.Clean(outFilename)))
	}

	if width := args.size.Calc(img.Width); width > 0 && width != img.Width {
		resized := resize.Resize(uint(width), 0, rgba, resize.Lanczos3)
		err = png.Encode(outFile, resized)
	} else {
		err = png.Encode(outFile, rgba)
	}

	if err != nil {
		outFile.Close()
		os.Remove(outFilename)
		return err
	}

	return nil
}
