// This is the main-driver for our compiler.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/skx/snek-compiler/compiler"
)

func main() {

	//
	// Look for flags.
	//
	debug := flag.Bool("debug", false, "Log compiler progress at debug level.")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors: isatty.IsTerminal(os.Stderr.Fd()),
	})
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	//
	// Ensure we have an input file and an output file as our two
	// arguments.
	//
	if len(flag.Args()) != 2 {
		fmt.Printf("Usage: compiler <input> <output>\n")
		os.Exit(1)
	}
	input := flag.Args()[0]
	output := flag.Args()[1]

	//
	// Read the source program.
	//
	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Printf("Error reading %s: %s\n", input, err.Error())
		os.Exit(1)
	}

	//
	// Create a compiler-object, with the program as input.
	//
	comp := compiler.New(string(src))

	//
	// Are we logging debug output while compiling?
	//
	if *debug {
		comp.SetDebug(true)
	}

	//
	// Compile.
	//
	out, err := comp.Compile()
	if err != nil {
		fmt.Printf("Error compiling: %s\n", err.Error())
		os.Exit(1)
	}

	//
	// Write the generated assembly to the output file.
	//
	if err := os.WriteFile(output, []byte(out), 0644); err != nil {
		fmt.Printf("Error writing %s: %s\n", output, err.Error())
		os.Exit(1)
	}
}
