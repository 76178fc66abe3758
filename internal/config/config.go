/*
 * UM32  - Configuration file parser
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

// Package config reads the Universal Machine's optional runtime tuning
// file.
//
// Configuration file format:
//
//	'#' indicates a comment, rest of line is ignored.
//	<line> := <key> '=' <value>
//	<key>  := 'max_segment_words' | 'log_level'
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Options holds the tunables the Universal Machine reads at startup.
type Options struct {
	MaxSegmentWords int    // 0 means unlimited
	LogLevel        string // passed through to umlog.Level
}

// Default returns the zero-configuration Options: no resource cap, info
// level logging.
func Default() Options {
	return Options{MaxSegmentWords: 0, LogLevel: "info"}
}

// Load reads path and overlays any recognized keys onto the defaults. A
// missing file is not an error; Load returns Default() unchanged.
func Load(path string) (Options, error) {
	opts := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	return parse(f, opts)
}

func parse(r io.Reader, opts Options) (Options, error) {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return opts, fmt.Errorf("config: line %d: missing '='", lineNumber)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "max_segment_words":
			n, err := strconv.Atoi(value)
			if err != nil {
				return opts, fmt.Errorf("config: line %d: %w", lineNumber, err)
			}
			opts.MaxSegmentWords = n
		case "log_level":
			opts.LogLevel = value
		default:
			return opts, fmt.Errorf("config: line %d: unknown key %q", lineNumber, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return opts, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}
