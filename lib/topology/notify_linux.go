// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package topology

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// watchFile signals on the returned channel whenever path is written
// or renamed into place. The parent directory is watched, not the
// file: WriteFile replaces the file by rename, which a watch on the
// old inode would miss. The channel holds at most one pending signal,
// so bursts of writes coalesce. Watching stops when ctx is done.
func watchFile(ctx context.Context, path string) (<-chan struct{}, error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	directory := filepath.Dir(absolutePath)

	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify: %w", err)
	}
	if _, err := unix.InotifyAddWatch(fd, directory, unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("watching %s: %w", directory, err)
	}

	changes := make(chan struct{}, 1)
	go notifyLoop(ctx, fd, filepath.Base(absolutePath), changes)
	return changes, nil
}

// notifyLoop polls the inotify fd with a 100ms timeout so it notices
// cancellation promptly. A poll or read failure ends the loop; the
// caller's ticker still drives reloads.
func notifyLoop(ctx context.Context, fd int, filename string, changes chan<- struct{}) {
	defer unix.Close(fd)

	buffer := make([]byte, 4096)
	for ctx.Err() == nil {
		descriptors := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		count, err := unix.Poll(descriptors, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if count == 0 {
			continue
		}

		bytesRead, err := unix.Read(fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if !eventsMention(buffer[:bytesRead], filename) {
			continue
		}

		select {
		case changes <- struct{}{}:
		default:
		}
	}
}

// eventsMention reports whether any inotify event in buffer names
// filename. Layout from inotify(7):
//
//	struct inotify_event {
//	    int32_t  wd;     // offset 0
//	    uint32_t mask;   // offset 4
//	    uint32_t cookie; // offset 8
//	    uint32_t len;    // offset 12
//	    char     name[]; // offset 16, null-padded to alignment
//	};
func eventsMention(buffer []byte, filename string) bool {
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}
		if nameLength > 0 {
			name := buffer[offset+unix.SizeofInotifyEvent : offset+eventSize]
			if end := bytes.IndexByte(name, 0); end >= 0 {
				name = name[:end]
			}
			if string(name) == filename {
				return true
			}
		}
		offset += eventSize
	}
	return false
}
