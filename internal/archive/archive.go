// Package archive packages named byte buffers into a single compressed ZIP
// blob. Entries are written in insertion order with maximum deflate
// compression, so identical input order always produces identical archives.
package archive

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
)

// Packager writes entries into one ZIP stream as they arrive. It holds no
// copy of entry data, which keeps memory flat while a frame sequence streams
// through it.
type Packager struct {
	zw     *zip.Writer
	closed bool
	count  int
}

func NewPackager(w io.Writer) *Packager {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return &Packager{zw: zw}
}

// Add appends one named entry. Names must be unique; the ZIP format does not
// enforce that, so the caller's naming scheme has to.
func (p *Packager) Add(name string, data []byte) error {
	if p.closed {
		return fmt.Errorf("archive: add %q after close", name)
	}
	w, err := p.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("archive: create entry %q: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("archive: write entry %q: %w", name, err)
	}
	p.count++
	return nil
}

// Count returns the number of entries added so far.
func (p *Packager) Count() int {
	return p.count
}

// Close finalizes the central directory. No entries may be added afterwards.
func (p *Packager) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.zw.Close()
}

// FrameEntryName returns the archive entry name for a captured frame:
// frame_<index zero-padded to 4 digits>.<ext>.
func FrameEntryName(index int, ext string) string {
	return fmt.Sprintf("frame_%04d.%s", index, ext)
}

// AssetEntryName returns the archive entry name for an extracted still asset.
func AssetEntryName(key string) string {
	return key + ".png"
}
