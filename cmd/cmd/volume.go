package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/internal/blockdev"
	"github.com/ostafen/sdfat/internal/fat"
	"github.com/ostafen/sdfat/internal/logger"
)

// mountedVolume bundles a volume with the resources backing it.
type mountedVolume struct {
	*fat.Volume

	closers []io.Closer
}

func (m *mountedVolume) Unmount() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	return errors.Join(errs...)
}

func consoleLogger(cmd *cobra.Command) *logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(cmd.ErrOrStderr(), logger.ParseLevel(level))
}

// openVolume mounts the first partition of the image or device at path.
// Writable volumes stamp modification times on the entries they update.
func openVolume(cmd *cobra.Command, path string, writable bool) (*mountedVolume, error) {
	useMmap, _ := cmd.Flags().GetBool("mmap")
	maxOpenFiles, _ := cmd.Flags().GetInt("max-open-files")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")

	m := &mountedVolume{}

	slogger, f, err := logger.Setup(logFile, logger.ParseLevel(logLevel))
	if err != nil {
		return nil, err
	}
	if f != nil {
		m.closers = append(m.closers, f)
	}

	dev, closer, err := blockdev.Open(path, writable, useMmap)
	if err != nil {
		_ = m.Unmount()
		return nil, err
	}
	m.closers = append(m.closers, closer)

	opts := []fat.Option{
		fat.WithLogger(slogger),
		fat.WithMaxOpenFiles(maxOpenFiles),
	}
	if writable {
		opts = append(opts, fat.WithClock(time.Now))
	}

	vol, err := fat.Mount(dev, opts...)
	if err != nil {
		_ = m.Unmount()
		return nil, fmt.Errorf("mount %s: %w", path, err)
	}
	m.Volume = vol
	return m, nil
}
