package web

import (
	"net/http"
	"runtime"
	"runtime/debug"
	"time"
)

type AboutResponse struct {
	Service    string `json:"service"`
	NowUTC     string `json:"now_utc"`
	GoVersion  string `json:"go_version"`
	ModulePath string `json:"module_path,omitempty"`
	Version    string `json:"version,omitempty"`
	Commit     string `json:"commit,omitempty"`
	Dirty      bool   `json:"dirty,omitempty"`
	BuildTime  string `json:"build_time,omitempty"`
}

// About describes the running binary. version is the -ldflags stamped
// version and wins over the module version from build info.
func About(service, version string) AboutResponse {
	resp := AboutResponse{
		Service:   service,
		NowUTC:    time.Now().UTC().Format(time.RFC3339Nano),
		GoVersion: runtime.Version(),
		Version:   version,
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		resp.ModulePath = bi.Main.Path
		if resp.Version == "" {
			resp.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				resp.Commit = s.Value
			case "vcs.modified":
				resp.Dirty = s.Value == "true"
			case "vcs.time":
				resp.BuildTime = s.Value
			}
		}
	}
	return resp
}

func AboutHandler(service, version string) http.Handler {
	return getOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, About(service, version))
	})
}
