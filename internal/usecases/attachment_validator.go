package usecases

import (
	"fmt"

	"rumfor-market.backend/internal/domain/entities"
)

// MaxUploadSize is the hard cap for a single attachment (10MB)
const MaxUploadSize = 10 << 20

// allowedUploadTypes is the MIME allow-list for application attachments
var allowedUploadTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateUpload checks attachment metadata before submission. It is pure:
// only name, size and declared type are inspected, never file contents.
func ValidateUpload(file entities.UploadedFile) error {
	if file.Size > MaxUploadSize {
		return fmt.Errorf("%s exceeds the maximum size of %dMB", file.Name, MaxUploadSize>>20)
	}
	if !allowedUploadTypes[file.MimeType] {
		return fmt.Errorf("%s has unsupported type %q", file.Name, file.MimeType)
	}
	return nil
}

// ValidateUploads checks a batch independently, collecting every failure
// keyed by file name instead of stopping at the first.
func ValidateUploads(files []entities.UploadedFile) FieldErrors {
	errs := make(FieldErrors)
	for _, f := range files {
		if err := ValidateUpload(f); err != nil {
			errs[f.Name] = err.Error()
		}
	}
	return errs
}
