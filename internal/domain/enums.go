package domain

// FileType represents the allowed file types for invoice uploads.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeWEBP FileType = "webp"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeWEBP: "image/webp",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/webp":      FileTypeWEBP,
}

// IsImage reports whether the file type is a raster image.
func (f FileType) IsImage() bool {
	return f == FileTypeJPG || f == FileTypePNG || f == FileTypeWEBP
}

// DraftState is the position of an invoice draft in the entry flow.
type DraftState string

const (
	DraftStateCollectingInput    DraftState = "collecting_input"
	DraftStateAwaitingExtraction DraftState = "awaiting_extraction"
	DraftStateReviewing          DraftState = "reviewing"
	DraftStateCommitted          DraftState = "committed"
)

// ExportFormat selects the dashboard export encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)
