// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package archive

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// EncodeRecord renders pkt as a single-line textual record: the
// wire-out JSON document, with any embedded newline
// stripped so the line discipline of the records file is never broken.
func EncodeRecord(pkt schema.Packet) (string, error) {
	b, err := json.Marshal(pkt)
	if err != nil {
		return "", fmt.Errorf("archive: encode record: %w", err)
	}
	line := strings.ReplaceAll(string(b), "\n", "")
	return line, nil
}

// DecodeRecord parses one records-file line back into a Packet.
func DecodeRecord(line string) (schema.Packet, error) {
	var pkt schema.Packet
	if err := json.Unmarshal([]byte(line), &pkt); err != nil {
		return schema.Packet{}, fmt.Errorf("archive: decode record: %w", err)
	}
	return pkt, nil
}

var (
	sanitizeDisallowed = regexp.MustCompile(`[^A-Za-z0-9 _.\-]`)
	sanitizeWhitespace = regexp.MustCompile(`\s+`)
)

// SanitizeFilename implements the sanitized_filename rule: characters
// outside [A-Za-z0-9 _.-] become '_', whitespace runs collapse to a
// single '_', and the result is trimmed.
func SanitizeFilename(f string) string {
	f = sanitizeDisallowed.ReplaceAllString(f, "_")
	f = sanitizeWhitespace.ReplaceAllString(f, "_")
	return strings.Trim(f, " _")
}

// ExtractFilename scans pkt's metrics for one named print_filename and
// returns its value, stripped of surrounding quotes/whitespace. An
// empty result is reported as absent.
func ExtractFilename(pkt schema.Packet) (string, bool) {
	for _, m := range pkt.Metrics {
		if m.Name != "print_filename" {
			continue
		}
		var raw string
		switch m.Kind {
		case schema.KindStructured:
			if len(m.Fields) > 0 {
				raw = m.Fields[0].Value.StringV()
			}
		default:
			raw = m.Value.StringV()
		}
		raw = strings.Trim(strings.TrimSpace(raw), `"`)
		if raw == "" {
			return "", false
		}
		return raw, true
	}
	return "", false
}
