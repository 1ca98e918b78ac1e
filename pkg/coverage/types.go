package coverage

// UploadInput identifies the run an artifact belongs to.
type UploadInput struct {
	Repository string
	Commit     string
	Branch     string
}

// APIResponse is the reporting service's JSON reply.
type APIResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
