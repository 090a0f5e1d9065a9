package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/xavierca1/codease-contact/internal/entity"
)

var ErrClosed = errors.New("submission log is closed")

type op struct {
	run  func() error
	done chan error
}

// WorkbookLog stores submissions in a single xlsx file. Every append reloads and
// rewrites the file, so all file access is funneled through one goroutine.
type WorkbookLog struct {
	path   string
	logger *zap.Logger

	ops       chan op
	quit      chan struct{}
	exit      chan struct{}
	closeOnce sync.Once
}

func NewWorkbookLog(dir string, logger *zap.Logger) *WorkbookLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &WorkbookLog{
		path:   filepath.Join(dir, FileName),
		logger: logger,
		ops:    make(chan op),
		quit:   make(chan struct{}),
		exit:   make(chan struct{}),
	}
	go l.loop()
	return l
}

func (l *WorkbookLog) Path() string {
	return l.path
}

func (l *WorkbookLog) loop() {
	defer close(l.exit)
	for {
		select {
		case o := <-l.ops:
			o.done <- o.run()
		case <-l.quit:
			return
		}
	}
}

// do hands fn to the writer goroutine. ctx only bounds the wait for the
// goroutine; once fn is accepted its result is returned whatever ctx does.
func (l *WorkbookLog) do(ctx context.Context, fn func() error) error {
	o := op{run: fn, done: make(chan error, 1)}
	select {
	case l.ops <- o:
	case <-l.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-o.done
}

func (l *WorkbookLog) Append(ctx context.Context, row entity.LogRow) error {
	return l.do(ctx, func() error {
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		f, err := openWorkbook(l.path)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := appendRow(f, row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
		if err := saveWorkbook(f, l.path); err != nil {
			return err
		}

		l.logger.Info("contact saved to workbook", zap.String("path", l.path))
		return nil
	})
}

func (l *WorkbookLog) ReadAll(ctx context.Context) ([]entity.LogRow, error) {
	res := make(chan []entity.LogRow, 1)
	err := l.do(ctx, func() error {
		rows, err := readRows(l.path)
		res <- rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return <-res, nil
}

// WriteDocument copies the stored workbook to w as-is and returns the number of
// data rows. Hand edits to the file survive.
func (l *WorkbookLog) WriteDocument(ctx context.Context, w io.Writer) (int, error) {
	var n int
	err := l.do(ctx, func() error {
		rows, err := readRows(l.path)
		if err != nil {
			return err
		}
		n = len(rows)

		src, err := os.Open(l.path)
		if err != nil {
			return fmt.Errorf("failed to open workbook: %w", err)
		}
		defer src.Close()

		if _, err := io.Copy(w, src); err != nil {
			return fmt.Errorf("failed to copy workbook: %w", err)
		}
		return nil
	})
	return n, err
}

// Close stops the writer goroutine after the operation in flight, if any.
func (l *WorkbookLog) Close() error {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.exit
	return nil
}
