// Package util holds small helpers shared across packages.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/coursecast/coursecast/filesystem"
	"golang.org/x/exp/constraints"
)

var (
	invalidFilename = regexp.MustCompile(`[\\/<>:;"'|?!*{}#%&^+,~\s]`)
	underscores     = regexp.MustCompile(`__+`)
	separators      = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
)

// SanitizeFilename makes filename safe on every platform.
func SanitizeFilename(filename string) string {
	filename = invalidFilename.ReplaceAllString(filename, "_")
	filename = underscores.ReplaceAllString(filename, "_")
	return separators.ReplaceAllString(filename, "")
}

// Quantify formats count with the matching noun.
func Quantify(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

func Capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FileStem is the base name of path without its extension.
func FileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// PrintErasable prints msg and returns a func that blanks it again.
func PrintErasable(msg string) (eraser func()) {
	fmt.Fprintf(os.Stdout, "\r%s", msg)
	return func() {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(msg)))
	}
}

// Ignore calls f and drops its error. Meant for deferred Close calls.
func Ignore(f func() error) {
	_ = f()
}

func Max[T constraints.Ordered](items ...T) (max T) {
	if len(items) == 0 {
		return
	}
	max = items[0]
	for _, item := range items[1:] {
		if item > max {
			max = item
		}
	}
	return
}

func Min[T constraints.Ordered](items ...T) (min T) {
	if len(items) == 0 {
		return
	}
	min = items[0]
	for _, item := range items[1:] {
		if item < min {
			min = item
		}
	}
	return
}

// Delete removes path, recursively for directories.
func Delete(path string) error {
	fs := filesystem.API()
	stat, err := fs.Stat(path)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return fs.RemoveAll(path)
	}
	return fs.Remove(path)
}
