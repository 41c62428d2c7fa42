package dto

// UploadResponse describes a stored upload. It doubles as a lesson attachment.
type UploadResponse struct {
	URL  string `json:"url" example:"/uploads/lessons/7b0c.png"`
	Name string `json:"name" example:"diagram.png"`
	Type string `json:"type" example:"image/png"`
	Size int64  `json:"size" example:"48213"`
}
