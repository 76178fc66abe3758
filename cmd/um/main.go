/*
 * UM32 - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"golang.org/x/term"

	"github.com/bchao-msoto/um32/internal/config"
	"github.com/bchao-msoto/um32/internal/cpu"
	"github.com/bchao-msoto/um32/internal/loader"
	"github.com/bchao-msoto/um32/internal/machine"
	"github.com/bchao-msoto/um32/internal/umlog"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "um32.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optRaw := getopt.BoolLong("raw", 'r', "Put stdin in raw mode for byte-granular Input")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("program.um")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) != 1 {
		getopt.Usage()
		os.Exit(1)
	}

	opts, err := config.Load(*optConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(umlog.Level(opts.LogLevel))
	Logger = slog.New(umlog.NewHandler(file, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(Logger)

	Logger.Info("UM32 started", "program", args[0])

	f, err := os.Open(args[0])
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	defer f.Close()

	words, err := loader.Load(f)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	hostIO := cpu.IO{In: os.Stdin, Out: os.Stdout}

	if *optRaw && term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			Logger.Error("failed to set raw mode", "error", err)
			os.Exit(1)
		}
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	m, err := machine.New(words, opts.MaxSegmentWords, hostIO)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	if err := m.Run(); err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	Logger.Info("UM32 halted normally")
}
