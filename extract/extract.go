// Package extract turns broker statement files into plain text,
// shelling out to pdftotext for PDF input.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Available reports whether the pdftotext executable can be found.
func Available() bool {
	_, err := exec.LookPath("pdftotext")
	return err == nil
}

// Text returns the text content of a statement file. Files already in
// text form (.txt) are read directly; anything else is run through
// `pdftotext -layout`, which preserves the column layout the table
// parsers depend on.
func Text(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}

	if !Available() {
		return "", fmt.Errorf("pdftotext not found in PATH; install poppler-utils or pass a .txt file")
	}

	dir, err := os.MkdirTemp("", "hledgerkit")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "statement.txt")
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, out)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftotext %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}

	content, err := os.ReadFile(out)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
