package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-scripts/videograb/internal/extract"
	"github.com/go-scripts/videograb/internal/metadata"
)

// FileWriter handles writing extraction results to files
type FileWriter struct {
	outputDir string
}

// New creates a new FileWriter instance
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// WriteResult writes a full extraction result to a file named after the
// scanned page URL. Returns the path written.
func (w *FileWriter) WriteResult(result *extract.Result) (string, error) {
	filename := w.sanitizeFilename(result.URL)
	if filename == "" {
		filename = "result"
	}
	path := filepath.Join(w.outputDir, filename+".json")
	if err := w.writeJSON(path, result); err != nil {
		return "", err
	}
	return path, nil
}

// WriteVideo writes a single-video metadata record.
func (w *FileWriter) WriteVideo(video *metadata.Video) (string, error) {
	filename := w.sanitizeFilename(video.URL)
	if filename == "" {
		filename = "video"
	}
	path := filepath.Join(w.outputDir, filename+".json")
	if err := w.writeJSON(path, video); err != nil {
		return "", err
	}
	return path, nil
}

func (w *FileWriter) writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// sanitizeFilename creates a safe filename from a URL
func (w *FileWriter) sanitizeFilename(url string) string {
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "www.")

	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " ", "#", "&", "="}
	for _, char := range unsafe {
		url = strings.ReplaceAll(url, char, "_")
	}

	const maxLen = 120
	if len(url) > maxLen {
		url = url[:maxLen]
	}
	return strings.Trim(url, "_")
}
