package tui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/clip-trimmer/editor"
)

type engineLoadedMsg struct {
	err error
}

type progressTickMsg time.Time

type exportDoneMsg struct {
	path string
	size int64
	err  error
}

func loadEngineCmd(ctx context.Context, ed *editor.Editor, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return engineLoadedMsg{err: ed.InitializeEngine(ctx)}
	}
}

func progressTickCmd() tea.Cmd {
	return tea.Tick(progressInterval, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

// exportCmd extracts the session's range and writes it next to dest. An
// existing file at dest is never overwritten; a numbered name is used instead.
func exportCmd(ctx context.Context, ed *editor.Editor, dest string) tea.Cmd {
	return func() tea.Msg {
		blob, err := ed.ExtractCurrent(ctx)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return exportDoneMsg{err: err}
		}
		dest, err = availablePath(dest)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := blob.Save(dest); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: dest, size: blob.Size()}
	}
}

func availablePath(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for i := 2; i < 1000; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	return "", fmt.Errorf("no free file name for %s", path)
}
