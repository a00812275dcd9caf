package models

// ExecArgs is the downloader-neutral argument set handed to the executor.
// Headers is already serialized in the selected downloader's own encoding.
type ExecArgs struct {
	URL            string `json:"url"`
	WorkDir        string `json:"workDir"`
	Name           string `json:"name"` // output file name without extension
	Headers        string `json:"headers"`
	DeleteSegments bool   `json:"enableDelAfterDone"`
}

// ExecResult represents the outcome of one downloader run
type ExecResult struct {
	ExitCode int    `json:"exitCode"`
	Message  string `json:"message"` // tail of the captured process output
}
