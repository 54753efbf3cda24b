// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package archive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/telemetryhub/telemetry-hub/pkg/log"
	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// Entry describes one records file for list_archives.
type Entry struct {
	Date       string
	Filename   string
	SizeBytes  int64
	ModifiedMs int64
}

// Reader is the read-side of the archive: safe to use concurrently
// with an ongoing Writer targeting the same root.
type Reader struct {
	Root string
}

func NewReader(root string) *Reader {
	return &Reader{Root: root}
}

// ListArchives returns every records file under Root, excluding dotfiles,
// sorted lexicographically by (date, filename).
func (r *Reader) ListArchives() ([]Entry, error) {
	dateDirs, err := os.ReadDir(r.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: read root %s: %w", r.Root, err)
	}

	var entries []Entry
	for _, dateDir := range dateDirs {
		if !dateDir.IsDir() || strings.HasPrefix(dateDir.Name(), ".") {
			continue
		}
		dir := filepath.Join(r.Root, dateDir.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			log.Errorf("archive: read dir %s: %v", dir, err)
			continue
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			info, err := f.Info()
			if err != nil {
				log.Errorf("archive: stat %s: %v", filepath.Join(dir, f.Name()), err)
				continue
			}
			entries = append(entries, Entry{
				Date:       dateDir.Name(),
				Filename:   f.Name(),
				SizeBytes:  info.Size(),
				ModifiedMs: info.ModTime().UnixMilli(),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].Filename < entries[j].Filename
	})
	return entries, nil
}

// ReadArchive parses every record in <root>/<date>/<filename>. A
// malformed or truncated trailing line is skipped with a warning rather
// than failing the whole read.
func (r *Reader) ReadArchive(date, filename string) ([]schema.Packet, error) {
	path := filepath.Join(r.Root, date, filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	var packets []schema.Packet
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pkt, err := DecodeRecord(line)
		if err != nil {
			log.Warnf("archive: skipping malformed record in %s: %v", path, err)
			continue
		}
		packets = append(packets, pkt)
	}
	if err := scanner.Err(); err != nil {
		log.Warnf("archive: scan error in %s, returning records read so far: %v", path, err)
	}
	return packets, nil
}
