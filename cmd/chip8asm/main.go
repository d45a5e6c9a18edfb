// chip8asm - assembles CHIP-8 source into a binary program image

/*
okto8 - a CHIP-8 virtual machine

License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	outFile := flag.String("o", "", "Output file (default: input.ch8)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chip8asm [options] input.asm\n\nAssembles CHIP-8 source into a .ch8 program image.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chip8asm maze.asm\n")
		fmt.Fprintf(os.Stderr, "  chip8asm -o roms/maze.ch8 maze.asm\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	program, err := Assemble(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inputPath, err)
		os.Exit(1)
	}

	outputPath := *outFile
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, ".asm") + ".ch8"
	}
	if err := os.WriteFile(outputPath, program, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d bytes -> %s\n", inputPath, len(program), outputPath)
}
