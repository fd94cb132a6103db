package documents

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Summary      string        `json:"summary,omitempty"`
	DocumentType string        `json:"documentType,omitempty"`
	Content      string        `json:"content,omitempty"`
	UploadDate   string        `json:"uploadDate"`
	File         *FileResponse `json:"file,omitempty"`
}

// FileResponse describes the stored file joined onto a document.
type FileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
}

// toListResponse builds the trimmed listing shape: content is omitted so
// list payloads stay small for users with many documents.
func toListResponse(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		item := toResponse(d)
		item.Content = ""
		out = append(out, item)
	}
	return out
}

func toResponse(doc Document) DocumentResponse {
	resp := DocumentResponse{
		ID:           doc.ID,
		Name:         doc.Name,
		Summary:      doc.Summary,
		DocumentType: string(doc.Type),
		Content:      doc.Content,
		UploadDate:   doc.UploadDate.Format("2006-01-02"),
	}
	if doc.File != nil {
		resp.File = &FileResponse{
			ID:        doc.File.ID,
			Name:      doc.File.Name,
			URL:       doc.File.URL,
			SizeBytes: doc.File.SizeBytes,
			MimeType:  doc.File.MimeType,
		}
	}
	return resp
}
