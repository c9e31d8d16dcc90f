package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"radhdr/libio"
)

type unpackArgs struct {
	commonArgs
	tonemapArgs
}

func createUnpackCommand() *command {

	args := unpackArgs{
		tonemapArgs: tonemapArgs{
			gamma: 2.2,
			scale: 1.0,
		},
	}

	flags := flag.NewFlagSet("unpack", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)
	registerTonemapFlags(flags, &args.tonemapArgs)

	return &command{
		Name: "unpack",
		Help: "tonemap f32 cache files to png",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.gamma <= 0 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runUnpack(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runUnpack(args unpackArgs, inputFiles []string) {
	success := 0
	start := time.Now()
	for i, p := range inputFiles {
		if !cargs.quiet {
			fmt.Printf("Processing file %d/%d %q ...\n", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
		}
		err := unpackFile(args, p)
		softerr(err)
		if err == nil {
			success++
		}
	}
	if !cargs.quiet {
		took := float32(time.Since(start).Milliseconds()) / 1000
		fmt.Printf("Unpacked %d/%d files in %.3f seconds\n", success, len(inputFiles), took)
	}
}

func unpackFile(args unpackArgs, p string) error {
	inFile, err := os.Open(p)
	if err != nil {
		return err
	}
	defer close(inFile)

	img, err := libio.DecodeFloatImage(bufio.NewReader(inFile))
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	if img.Channels != 3 {
		return fmt.Errorf("%s: has %d channels, only 3 channel images can be tonemapped", p, img.Channels)
	}

	rgba := img.ToIntImage(float32(args.gamma), float32(args.scale)).ToRGBA()

	outFilename := outFilename(p, ".png")
	outFile, err := os.OpenFile(outFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer close(outFile)

	if !cargs.quiet {
		fmt.Printf("Writing %q ...\n", filepath.ToSlash(filepath.Clean(outFilename)))
	}

	err = png.Encode(outFile, rgba)
	if err != nil {
		outFile.Close()
		os.Remove(outFilename)
		return err
	}

	return nil
}
