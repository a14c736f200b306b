package attachment

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// execDecoder extracts text by piping bytes through an external tool.
// The tool reads from stdin and writes to stdout unless tempFile is
// set, for tools that only accept a file path argument.
type execDecoder struct {
	format   string
	tool     string
	args     []string
	stdin    bool
	tempFile bool
}

func (d *execDecoder) Format() string { return d.format }

func (d *execDecoder) Decode(ctx context.Context, data []byte) (string, error) {
	path, err := exec.LookPath(d.tool)
	if err != nil {
		return "", &DecoderUnavailable{Format: d.format, Tool: d.tool}
	}

	args := d.args
	if d.tempFile {
		tmpPath := filepath.Join(os.TempDir(), "fastmailctl-"+uuid.NewString())
		if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
			return "", &DecodeFailed{Format: d.format, Err: fmt.Errorf("writing temp file: %w", err)}
		}
		defer os.Remove(tmpPath)
		args = append(append([]string{}, d.args...), tmpPath)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if d.stdin {
		cmd.Stdin = bytes.NewReader(data)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", &DecodeFailed{Format: d.format, Err: fmt.Errorf("%s: %s", d.tool, msg)}
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", &DecodeFailed{Format: d.format, Err: fmt.Errorf("%s produced no output", d.tool)}
	}
	return text, nil
}
