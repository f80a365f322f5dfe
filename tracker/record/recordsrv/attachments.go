package recordsrv

import (
	"context"
	"io"
	"time"

	"github.com/linearflow/linearflow/pkg/errx"
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/record"
)

const maxAttachmentSize = 10 * 1024 * 1024 // 10MB

var allowedAttachmentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// UploadAttachment stores the document sent with an application (resume,
// cover letter) and links it to the record
func (s *RecordService) UploadAttachment(ctx context.Context, principal kernel.UserID, req record.UploadAttachmentRequest) (*record.UploadAttachmentResponse, error) {
	rec, err := s.getOwned(ctx, principal, req.RecordID)
	if err != nil {
		return nil, err
	}

	if req.FileSize > maxAttachmentSize || int64(len(req.FileData)) > maxAttachmentSize {
		return nil, record.ErrFileSizeTooLarge().
			WithDetail("file_size", req.FileSize).
			WithDetail("max_size", maxAttachmentSize)
	}

	if !allowedAttachmentTypes[req.ContentType] {
		return nil, record.ErrInvalidFileType().
			WithDetail("content_type", req.ContentType).
			WithDetail("allowed_types", "pdf, doc, docx, txt")
	}

	// Storage path: attachments/{record_id}/{filename}
	storagePath := s.fileSystem.Join("attachments", rec.ID.String(), req.FileName)

	if err := s.fileSystem.WriteFile(ctx, storagePath, req.FileData); err != nil {
		return nil, errx.Wrap(err, "failed to upload attachment", errx.TypeExternal).
			WithDetail("path", storagePath)
	}

	key := kernel.AttachmentKey(storagePath)
	if err := s.recordRepo.UpdateAttachmentKey(ctx, rec.ID, key); err != nil {
		// Attempt to clean up the uploaded file
		s.fileSystem.DeleteFile(context.Background(), storagePath)
		return nil, errx.Wrap(err, "failed to link attachment to record", errx.TypeInternal)
	}

	return &record.UploadAttachmentResponse{
		RecordID:   rec.ID,
		Key:        key,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		UploadedAt: time.Now(),
	}, nil
}

// DownloadAttachment streams the record's stored document
func (s *RecordService) DownloadAttachment(ctx context.Context, principal kernel.UserID, id kernel.RecordID) (io.ReadCloser, string, error) {
	rec, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, "", err
	}

	if !rec.HasAttachment() {
		return nil, "", record.ErrAttachmentNotFound().WithDetail("record_id", id.String())
	}

	stream, err := s.fileSystem.ReadFileStream(ctx, string(rec.AttachmentKey))
	if err != nil {
		return nil, "", errx.Wrap(err, "failed to download attachment", errx.TypeExternal).
			WithDetail("key", rec.AttachmentKey)
	}

	return stream, extractFilename(string(rec.AttachmentKey)), nil
}

// extractFilename extracts the final segment of a storage path
func extractFilename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
