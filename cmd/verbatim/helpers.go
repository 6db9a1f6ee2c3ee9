package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"verbatim/internal/config"
	"verbatim/internal/ctm"
	"verbatim/internal/fileutil"
	"verbatim/internal/services"
)

// readText returns the content of path, or stdin when path is empty or "-".
func readText(cmd *cobra.Command, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return "", services.Wrap(services.ErrNotFound, "cli", "read file", expanded, err)
		}
		return "", fmt.Errorf("read %s: %w", expanded, err)
	}
	return string(data), nil
}

// readTranscriptText reads a transcript file and drops the trailing newline
// editors add.
func readTranscriptText(cmd *cobra.Command, path string) (string, error) {
	text, err := readText(cmd, path)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, "\r\n"), nil
}

func loadWords(path string) (ctm.Sequence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrValidation, "cli", "load ctm", "--ctm is required", nil)
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	seq, err := ctm.Load(expanded)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "load ctm", expanded, err)
	}
	return seq, nil
}

// writeOutput writes data atomically to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(expanded, data, 0o644)
}

func encodeWords(seq ctm.Sequence) ([]byte, error) {
	var buf bytes.Buffer
	if err := ctm.Encode(&buf, seq); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatSeconds(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := seconds - float64(h*3600+m*60)
	return fmt.Sprintf("%d:%02d:%04.1f", h, m, s)
}
