// Package upload guards file uploads (declared & sniffed MIME types, size limits) before anything is stored.
package upload

import (
	"bytes"
	"context"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

const (
	MimeXLS  = "application/vnd.ms-excel"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeCSV  = "text/csv"
	MimePDF  = "application/pdf"
)

// TimetableTypes are the accepted timetable MIME types.
var TimetableTypes = []string{MimeXLS, MimeXLSX, MimeCSV}

type (
	// File is an uploaded file.
	File struct {
		Name        string
		ContentType string // as declared by the client
		Size        int64
		Content     io.ReadSeeker
	}

	// Guard is the set of rules a File must pass.
	Guard struct {
		Field   string
		Allow   func(contentType string) bool
		Sniff   bool  // also check the detected content type
		MaxSize int64 // 0: unlimited
	}

	// MediaStore persists uploaded media and returns the URL it is reachable at.
	MediaStore interface {
		Save(ctx context.Context, folder string, f File) (url string, err error)
	}
)

// FromBytes builds a File out of data.
func FromBytes(name, contentType string, data []byte) File {
	return File{Name: name, ContentType: contentType, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

// MediaType returns the declared content type without parameters, lower cased.
func (f File) MediaType() string {
	return normalize(f.ContentType)
}

// Detect sniffs the content type of f and rewinds it.
func (f File) Detect() (string, error) {
	if f.Content == nil {
		return "", nil
	}
	mtype, err := mimetype.DetectReader(f.Content)
	if err != nil {
		return "", errors.Wrap(err, "detecting content type")
	}
	if _, err = f.Content.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewinding upload")
	}
	return normalize(mtype.String()), nil
}

func normalize(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Check fails with core.ErrUnsupportedFileType or core.ErrFileTooLarge, type first.
func (g Guard) Check(f File) error {
	if !g.Allow(f.MediaType()) {
		return errors.Wrap(core.ErrUnsupportedFileType, g.Field)
	}
	if g.MaxSize > 0 && f.Size > g.MaxSize {
		return errors.Wrap(core.ErrFileTooLarge, g.Field)
	}
	if g.Sniff {
		detected, err := f.Detect()
		if err != nil {
			return err
		}
		if !g.Allow(detected) {
			return errors.Wrap(core.ErrUnsupportedFileType, g.Field)
		}
	}
	return nil
}

func isVideo(contentType string) bool { return strings.HasPrefix(contentType, "video/") }
func isImage(contentType string) bool { return strings.HasPrefix(contentType, "image/") }

func isTimetable(contentType string) bool {
	for _, t := range TimetableTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

// Timetable accepts csv, xls & xlsx by declared type only.
func Timetable(maxSize int64) Guard {
	return Guard{Field: "file", Allow: isTimetable, MaxSize: maxSize}
}

// Video accepts any video/* file up to maxSize.
func Video(field string, maxSize int64) Guard {
	return Guard{Field: field, Allow: isVideo, Sniff: true, MaxSize: maxSize}
}

// Document accepts PDFs & images.
func Document(field string, maxSize int64) Guard {
	allow := func(contentType string) bool { return contentType == MimePDF || isImage(contentType) }
	return Guard{Field: field, Allow: allow, Sniff: true, MaxSize: maxSize}
}

// Image accepts images only.
func Image(field string, maxSize int64) Guard {
	return Guard{Field: field, Allow: isImage, Sniff: true, MaxSize: maxSize}
}
