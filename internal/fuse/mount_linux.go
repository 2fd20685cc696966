//go:build linux
// +build linux

// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package fuse

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/ostafen/sdfat/internal/fat"
	"github.com/ostafen/sdfat/internal/logger"
	osutil "github.com/ostafen/sdfat/pkg/util/os"
)

type Options struct {
	Writable bool
	Log      *logger.Logger
}

// Mount serves vol at mountpoint until a termination signal unmounts it.
// The mountpoint is created if missing and must otherwise be empty.
func Mount(mountpoint string, vol *fat.Volume, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logger.New(os.Stderr, logger.InfoLevel)
	}

	created, err := osutil.EnsureDir(mountpoint, true)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	mountOpts := []fuse.MountOption{
		fuse.FSName("sdfat"),
		fuse.Subtype("fat32"),
	}
	if !opts.Writable {
		mountOpts = append(mountOpts, fuse.ReadOnly())
	}

	c, err := fuse.Mount(mountpoint, mountOpts...)
	if err != nil {
		return err
	}
	defer c.Close()

	serveErr := make(chan error, 1)
	go func() {
		srv := fusefs.New(c, nil)
		serveErr <- srv.Serve(NewVolumeFS(vol, opts.Writable))
	}()

	log.Infof("Mounted %s (read-write: %t)", mountpoint, opts.Writable)
	return waitForUmount(mountpoint, log, serveErr)
}

func waitForUmount(mountpoint string, log *logger.Logger, serveErr <-chan error) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("Waiting for termination signal...")

	const maxUnmountRetries = 3

	unmountAttempts := 0
	for {
		select {
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("serve %s: %w", mountpoint, err)
			}
			return nil
		case sig := <-sigc:
			log.Infof("Signal received: %v.", sig)

			if unmountAttempts >= maxUnmountRetries-1 {
				return fmt.Errorf("maximum unmount retries (%d) exceeded, still unable to unmount %s",
					maxUnmountRetries, mountpoint)
			}

			log.Infof("Attempting unmount of %s (attempt %d/%d)...", mountpoint, unmountAttempts+1, maxUnmountRetries)
			err := fuse.Unmount(mountpoint)
			if err == nil {
				log.Info("Unmounted successfully, exiting.")
				return nil
			}

			unmountAttempts++
			log.Warnf("Unmount failed: %v. Remaining retries: %d. Waiting for another signal to retry...", err, maxUnmountRetries-unmountAttempts)
		}
	}
}
