// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryhub/telemetry-hub/internal/hub"
	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "job_gcode", SanitizeFilename("job/gcode"))
	assert.Equal(t, "my_print_job", SanitizeFilename("my  print job"))
	assert.Equal(t, "benchy.gcode", SanitizeFilename("  benchy.gcode  "))
}

func TestExtractFilenameNumericMetric(t *testing.T) {
	pkt := schema.Packet{Metrics: []schema.Metric{
		{Name: "print_filename", Kind: schema.KindNumeric, Value: schema.NewString(`"job.gcode"`)},
	}}
	f, ok := ExtractFilename(pkt)
	require.True(t, ok)
	assert.Equal(t, "job.gcode", f)
}

func TestExtractFilenameAbsent(t *testing.T) {
	pkt := schema.Packet{Metrics: []schema.Metric{{Name: "temp", Kind: schema.KindNumeric}}}
	_, ok := ExtractFilename(pkt)
	assert.False(t, ok)
}

func TestRecordRoundTrip(t *testing.T) {
	pkt := schema.Packet{Sender: "a", ReceivedAt: time.UnixMilli(1000), Metrics: []schema.Metric{
		{Name: "temp", Kind: schema.KindNumeric, Value: schema.NewFloat(20)},
	}}
	line, err := EncodeRecord(pkt)
	require.NoError(t, err)

	got, err := DecodeRecord(line)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Sender)
	require.Len(t, got.Metrics, 1)
	assert.Equal(t, "temp", got.Metrics[0].Name)
}

func TestWriterStickyFilenameAndTimeout(t *testing.T) {
	root := t.TempDir()
	h := hub.New()
	w := NewWriter(h, root, 1*time.Minute, 10)
	w.Start()
	defer w.Stop()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	filenameMetric := schema.Metric{Name: "print_filename", Kind: schema.KindNumeric, Value: schema.NewString("job.gcode")}

	h.Publish(schema.Packet{Sender: "s1", ReceivedAt: base, Metrics: []schema.Metric{filenameMetric}})
	h.Publish(schema.Packet{Sender: "s1", ReceivedAt: base.Add(10 * time.Second), Metrics: []schema.Metric{
		{Name: "temp", Kind: schema.KindNumeric, Value: schema.NewFloat(1)},
	}})
	h.Publish(schema.Packet{Sender: "s1", ReceivedAt: base.Add(20 * time.Second), Metrics: []schema.Metric{
		{Name: "temp", Kind: schema.KindNumeric, Value: schema.NewFloat(2)},
	}})
	// Two minutes of silence exceeds the 1-minute timeout: this
	// filename-less packet is dropped, not appended.
	h.Publish(schema.Packet{Sender: "s1", ReceivedAt: base.Add(140 * time.Second), Metrics: []schema.Metric{
		{Name: "temp", Kind: schema.KindNumeric, Value: schema.NewFloat(3)},
	}})

	time.Sleep(100 * time.Millisecond)

	r := NewReader(root)
	entries, err := r.ListArchives()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "job.gcode.records", entries[0].Filename)

	packets, err := r.ReadArchive(entries[0].Date, entries[0].Filename)
	require.NoError(t, err)
	assert.Len(t, packets, 3)
}

func TestWriterDropsIdlePacketWithoutFilename(t *testing.T) {
	root := t.TempDir()
	h := hub.New()
	w := NewWriter(h, root, 1*time.Minute, 10)
	w.Start()
	defer w.Stop()

	h.Publish(schema.Packet{Sender: "s1", ReceivedAt: time.Now(), Metrics: []schema.Metric{
		{Name: "temp", Kind: schema.KindNumeric, Value: schema.NewFloat(1)},
	}})

	time.Sleep(50 * time.Millisecond)

	r := NewReader(root)
	entries, err := r.ListArchives()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriterSweepIdleExpiresStaleActivePrint(t *testing.T) {
	root := t.TempDir()
	h := hub.New()
	w := NewWriter(h, root, 50*time.Millisecond, 10)
	w.Start()
	defer w.Stop()

	h.Publish(schema.Packet{Sender: "s1", ReceivedAt: time.Now(), Metrics: []schema.Metric{
		{Name: "print_filename", Kind: schema.KindNumeric, Value: schema.NewString("job.gcode")},
	}})
	time.Sleep(20 * time.Millisecond)

	w.mu.Lock()
	_, exists := w.active["s1"]
	w.mu.Unlock()
	require.True(t, exists)

	time.Sleep(80 * time.Millisecond)
	w.SweepIdle()

	w.mu.Lock()
	_, exists = w.active["s1"]
	w.mu.Unlock()
	assert.False(t, exists)
}

func TestListArchivesOnMissingRoot(t *testing.T) {
	r := NewReader(t.TempDir() + "/does-not-exist")
	entries, err := r.ListArchives()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
