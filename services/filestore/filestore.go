package filestoresvc

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
)

// MaxUploadSize caps uploads at 5 MB.
const MaxUploadSize = 5 << 20

var (
	ErrFileTooLarge      = errors.New("file exceeds the 5MB size limit")
	ErrUnsupportedType   = errors.New("only images and PDF documents are accepted")
	allowedContentTypes  = []string{"application/pdf"}
	allowedContentPrefix = "image/"
)

// checkUpload enforces the size cap and content-type allow-list shared by
// every store implementation. Rejections are validation failures, not
// upstream ones.
func checkUpload(contentType string, size int64) error {
	if size > MaxUploadSize {
		return core.NewValidationError(ErrFileTooLarge, core.FieldError{Field: "file", Error: ErrFileTooLarge.Error()})
	}
	if strings.HasPrefix(contentType, allowedContentPrefix) {
		return nil
	}
	for _, ct := range allowedContentTypes {
		if contentType == ct {
			return nil
		}
	}
	return core.NewValidationError(ErrUnsupportedType, core.FieldError{Field: "file", Error: ErrUnsupportedType.Error()})
}
