package s3

// Object is a blob queued for upload: an ingested invoice file or a
// generated export spreadsheet.
type Object struct {
	OwnerID     string `json:"owner_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func NewObject(ownerID, fileName, contentType string, data []byte) *Object {
	return &Object{
		OwnerID:     ownerID,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}
}
