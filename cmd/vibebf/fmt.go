package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func fmtCommand(args []string) error {
	fset := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fset.SetOutput(new(flagErrorSink))
	write := fset.Bool("w", false, "write result to source files instead of stdout")
	check := fset.Bool("check", false, "fail if any source file needs formatting")
	if err := fset.Parse(args); err != nil {
		return err
	}

	targets := fset.Args()
	if len(targets) == 0 {
		return errors.New("vibebf fmt: path required")
	}

	files, err := collectSourceFiles(targets)
	if err != nil {
		return err
	}

	var pending []string
	for _, path := range files {
		original, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		formatted := formatSource(string(original))
		changed := formatted != string(original)
		if changed {
			pending = append(pending, path)
		}

		switch {
		case *write && changed:
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		case !*write && !*check:
			fmt.Print(formatted)
		}
	}

	if *check && len(pending) > 0 {
		return fmt.Errorf("vibebf fmt: %d file(s) need formatting: %s", len(pending), strings.Join(pending, ", "))
	}
	return nil
}

func collectSourceFiles(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	addFile := func(path string) {
		if filepath.Ext(path) != sourceExt {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			addFile(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !entry.IsDir() {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// byteOrderMark is what some editors put in front of a saved file. The
// engine would stop on it as an invalid token at index 0.
const byteOrderMark = '\uFEFF'

// formatSource drops a leading byte order mark and every carriage
// return, so CRLF becomes LF and a stray CR inside a line disappears
// rather than splitting it. Blanks at the end of a line are trimmed and
// the text ends with one newline. Only non-instructions are touched.
func formatSource(source string) string {
	source = strings.TrimPrefix(source, string(byteOrderMark))

	var out, blanks strings.Builder
	out.Grow(len(source) + 1)
	for _, r := range source {
		switch r {
		case '\r':
		case ' ', '\t':
			blanks.WriteRune(r)
		case '\n':
			blanks.Reset()
			out.WriteByte('\n')
		default:
			out.WriteString(blanks.String())
			blanks.Reset()
			out.WriteRune(r)
		}
	}
	return strings.TrimRight(out.String(), "\n") + "\n"
}
