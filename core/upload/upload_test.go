package upload

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

var (
	aviData = append([]byte("RIFF\x00\x10\x00\x00AVI LIST"), bytes.Repeat([]byte{0}, 64)...)
	pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	pdfData = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	csvData = []byte("Day,Time,Subject,Faculty,Semester,Branch,Section\nMon,9:00,DS,Rao,5,CSE,A\n")
)

func TestGuard_Check(t *testing.T) {
	const maxVideo = 50 << 20

	tests := []struct {
		name    string
		guard   Guard
		file    File
		wantErr error
	}{
		{"timetable csv", Timetable(0), FromBytes("tt.csv", "text/csv", csvData), nil},
		{"timetable csv with charset", Timetable(0), FromBytes("tt.csv", "text/csv; charset=utf-8", csvData), nil},
		{"timetable xlsx", Timetable(0), FromBytes("tt.xlsx", MimeXLSX, []byte("PK")), nil},
		{"timetable xls", Timetable(0), FromBytes("tt.xls", MimeXLS, []byte{0xd0, 0xcf}), nil},
		{"timetable pdf", Timetable(0), FromBytes("tt.pdf", MimePDF, pdfData), core.ErrUnsupportedFileType},
		{"video avi", Video("video", maxVideo), FromBytes("face.avi", "video/x-msvideo", aviData), nil},
		{"video declared as image", Video("video", maxVideo), FromBytes("face.avi", "image/png", aviData), core.ErrUnsupportedFileType},
		{"video with image content", Video("video", maxVideo), FromBytes("face.mp4", "video/mp4", pngData), core.ErrUnsupportedFileType},
		{
			name:    "video too large",
			guard:   Video("video", maxVideo),
			file:    File{Name: "face.mp4", ContentType: "video/mp4", Size: 60 << 20, Content: bytes.NewReader(aviData)},
			wantErr: core.ErrFileTooLarge,
		},
		{
			name:    "unsupported wins over too large",
			guard:   Video("video", maxVideo),
			file:    File{Name: "face.txt", ContentType: "text/plain", Size: 60 << 20, Content: bytes.NewReader(csvData)},
			wantErr: core.ErrUnsupportedFileType,
		},
		{"document pdf", Document("permissionLetter", 0), FromBytes("letter.pdf", MimePDF, pdfData), nil},
		{"document png", Document("permissionLetter", 0), FromBytes("letter.png", "image/png", pngData), nil},
		{"document csv", Document("permissionLetter", 0), FromBytes("letter.csv", MimeCSV, csvData), core.ErrUnsupportedFileType},
		{"image png", Image("selfie", 0), FromBytes("me.png", "image/png", pngData), nil},
		{"image pdf", Image("selfie", 0), FromBytes("me.pdf", MimePDF, pdfData), core.ErrUnsupportedFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.guard.Check(tt.file)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			}
		})
	}
}

func TestFile_DetectRewinds(t *testing.T) {
	f := FromBytes("me.png", "image/png", pngData)
	mtype, err := f.Detect()
	require.NoError(t, err)
	assert.Equal(t, "image/png", mtype)

	buf := make([]byte, 4)
	_, err = f.Content.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), buf)
}
