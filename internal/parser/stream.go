package parser

import (
	"bufio"
	"io"
	"os"

	"github.com/gstlog-visualizer/backend/internal/models"
)

// ProgressCallback is called periodically during parsing to report progress.
type ProgressCallback func(linesProcessed int, bytesProcessed int64, totalBytes int64)

// Result holds the outcome of parsing one uploaded artifact.
type Result struct {
	Entries      []models.Entry
	TotalLines   int
	DroppedLines int // lines the tokenizer rejected, kept only as a count
}

// ParseReader consumes a byte stream line by line, tokenizing each line and
// silently dropping unparsable ones. Debug logs routinely contain partial or
// interleaved writes from concurrent producers, so per-line failures are
// deliberate best-effort recovery, not errors. Input order is preserved.
func ParseReader(r io.Reader, totalBytes int64, onProgress ProgressCallback) (*Result, error) {
	scanner := bufio.NewScanner(r)
	// Large buffer for long MEMDUMP lines (1MB instead of default 64KB).
	const maxScannerBuffer = 1024 * 1024
	scanner.Buffer(make([]byte, 0, maxScannerBuffer), maxScannerBuffer)

	res := &Result{Entries: make([]models.Entry, 0, 1024)}
	var bytesRead int64

	for scanner.Scan() {
		line := scanner.Text()
		res.TotalLines++
		bytesRead += int64(len(line)) + 1

		entry, fail := Tokenize(line)
		if fail != nil {
			res.DroppedLines++
			continue
		}
		res.Entries = append(res.Entries, *entry)

		if onProgress != nil && res.TotalLines%100000 == 0 {
			onProgress(res.TotalLines, bytesRead, totalBytes)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if onProgress != nil {
		onProgress(res.TotalLines, bytesRead, totalBytes)
	}

	return res, nil
}

// ParseFile opens and parses a log file from disk.
func ParseFile(filePath string, onProgress ProgressCallback) (*Result, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return ParseReader(file, info.Size(), onProgress)
}
