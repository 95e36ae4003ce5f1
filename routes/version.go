package routes

import (
	"net/http"
	"runtime"
)

// Build-time variables (injected by ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionResponse represents the version information response
type VersionResponse struct {
	Version   string   `json:"version"`
	BuildTime string   `json:"build_time"`
	GoVersion string   `json:"go_version"`
	GitCommit string   `json:"git_commit,omitempty"`
	Storage   string   `json:"storage"`
	Encoders  []string `json:"encoders"`
}

// VersionHandler provides version information about the build and the
// output formats this host can encode.
func (s *Server) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version:   Version,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		GitCommit: GitCommit,
		Storage:   s.media.Backend().Name(),
		Encoders:  s.encoders.Formats(),
	})
}
