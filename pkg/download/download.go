/*
download retrieves a located archive from its source and stores it locally
*/
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/openshift/polarion-fetch/pkg/artifact"
	"github.com/openshift/polarion-fetch/pkg/utils"
)

const (
	// DefaultChunkSize is the number of bytes read between progress reports
	DefaultChunkSize int64 = 100 * 1024 * 1024
	// DefaultOutput is the local file archives are written to
	DefaultOutput = "polarion-linux.zip"
)

// Source opens a byte stream for a remote file
type Source interface {
	// Open returns the file's contents along with its size, or -1 if the size is unknown
	Open(ctx context.Context, file artifact.File) (io.ReadCloser, int64, error)
}

// Downloader copies remote files into local files, reporting its progress as it goes
type Downloader struct {
	source Source
	// ChunkSize is the number of bytes read between progress reports
	ChunkSize int64
	// Out receives progress and completion messages
	Out io.Writer
	// Verify, when set, checks the downloaded contents before anything is written locally.
	// Returning an error aborts the download and leaves dest untouched
	Verify func(file artifact.File, contents []byte) error
}

// New creates a Downloader for the given Source which reports to stdout
func New(source Source) *Downloader {
	return &Downloader{
		source:    source,
		ChunkSize: DefaultChunkSize,
		Out:       os.Stdout,
	}
}

// Download retrieves the file into memory, verifies it if requested, then writes it to dest,
// replacing any existing file
func (d *Downloader) Download(ctx context.Context, file artifact.File, dest string) error {
	reader, size, err := d.source.Open(ctx, file)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := reader.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "WARNING: failed to close download stream for '%s': %v\n", file.Name, closeErr)
		}
	}()

	buf, err := d.readChunks(reader, size)
	if err != nil {
		return fmt.Errorf("failed to download '%s': %w", file.Name, err)
	}

	if d.Verify != nil {
		err = d.Verify(file, buf.Bytes())
		if err != nil {
			return fmt.Errorf("failed to verify '%s': %w", file.Name, err)
		}
	}

	err = utils.WriteFile(buf, dest, os.FileMode(0o644))
	if err != nil {
		return fmt.Errorf("failed to store '%s': %w", file.Name, err)
	}
	fmt.Fprintf(d.Out, "Downloaded %s to %s\n", file.Name, dest)
	return nil
}

// readChunks reads the stream to completion, reporting progress after every chunk when size is known
func (d *Downloader) readChunks(reader io.Reader, size int64) (*bytes.Buffer, error) {
	chunkSize := d.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	buf := new(bytes.Buffer)
	var completed int64
	for {
		n, err := io.CopyN(buf, reader, chunkSize)
		completed += n
		if errors.Is(err, io.EOF) {
			// A final, partial chunk still counts as progress. Nothing was read if the
			// previous chunk happened to end exactly at the end of the stream
			if n > 0 || completed == 0 {
				d.reportProgress(completed, size)
			}
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
		d.reportProgress(completed, size)
	}
}

func (d *Downloader) reportProgress(completed, size int64) {
	if size <= 0 {
		return
	}
	percent := completed * 100 / size
	if percent > 100 {
		percent = 100
	}
	fmt.Fprintf(d.Out, "Download %d%%.\n", percent)
}
