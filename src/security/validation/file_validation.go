package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raymond0208/CashCatalyst/src/logger"
)

// allowedClientContentTypes are the client-declared MIME types accepted for
// transaction imports: CSV variants plus Excel workbooks.
var allowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"text/plain":               true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/octet-stream":                                          true, // generic fallback, parsing decides
}

// ValidateClientContentType checks the Content-Type header declared by the
// client. Cheap first gate; the magic-byte check below does the real work.
func ValidateClientContentType(contentType string) error {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedClientContentTypes[mediaType] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("file type '%s' is not allowed; upload a CSV or Excel file", contentType)
	}
	return nil
}

// allowedDetectedTypes are content types http.DetectContentType may report
// for the files we accept. xlsx files are zip archives, so application/zip
// is expected for them.
var allowedDetectedTypes = map[string]bool{
	"text/plain":               true,
	"text/csv":                 true,
	"application/csv":          true,
	"application/zip":          true,
	"application/octet-stream": true,
}

// ValidateFileContentByMagicBytes sniffs the first 512 bytes of the upload
// and rejects content that is neither text nor a zip-based workbook. The
// read offset is reset so the parser sees the whole file.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}

	detectedContentType := http.DetectContentType(buffer[:n])
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	if !allowedDetectedTypes[detectedContentType] {
		logger.L.Warn("Disallowed detected file content type", "detectedContentType", detectedContentType)
		return detectedContentType, fmt.Errorf("detected file content type '%s' is not a CSV or Excel file", detectedContentType)
	}
	return detectedContentType, nil
}
