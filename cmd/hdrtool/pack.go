package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"radhdr/libio"
)

type packArgs struct {
	commonArgs
}

func createPackCommand() *command {

	args := packArgs{
		commonArgs: commonArgs{
			compress: 1,
			ext:      ".f32",
		},
	}

	flags := flag.NewFlagSet("pack", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)

	return &command{
		Name: "pack",
		Help: "convert radiance hdr images to the f32 cache format",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.compress < 0 || args.compress > 1 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runPack(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runPack(args packArgs, inputFiles []string) {
	success := 0
	start := time.Now()
	for i, p := range inputFiles {
		if !cargs.quiet {
			fmt.Printf("Processing file %d/%d %q ...\n", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
		}
		err := packFile(args, p)
		softerr(err)
		if err == nil {
			success++
		}
	}
	if !cargs.quiet {
		took := float32(time.Since(start).Milliseconds()) / 1000
		fmt.Printf("Packed %d/%d files in %.3f seconds\n", success, len(inputFiles), took)
	}
}

func packFile(args packArgs, p string) error {
	loader, closer, err := openHdr(p)
	if err != nil {
		return err
	}
	defer close(closer)

	img, err := loader.LoadImage()
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	compression := libio.FloatImageCompressionFixedPoint16Lz4
	if cargs.compress == 0 {
		compression = libio.FloatImageCompressionNone
	}

	outFilename := outFilename(p, ".f32")
	outFile, err := os.OpenFile(outFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer close(outFile)

	if !cargs.quiet {
		fmt.Printf("Writing %q ...\n", filepath.ToSlash(filepath.Clean(outFilename)))
	}

	bw := bufio.NewWriter(outFile)
	hdr := libio.NewFloatImage(img.Pix(), 3, img.Width, img.Height)

	err = libio.EncodeFloatImage(bw, hdr, compression)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		outFile.Close()
		os.Remove(outFilename)
		return err
	}

	return nil
}
