package executor

import (
	"strings"

	"github.com/Belphemur/MediaDownloader/internal/apperrors"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

// DownloaderKind identifies one of the supported external downloader executables
type DownloaderKind string

const (
	MediaGo   DownloaderKind = "mediago"
	M3u8DLCli DownloaderKind = "N_m3u8DL-CLI"
)

// strategy is how a downloader wants its headers and arguments laid out
type strategy struct {
	// headerSep joins a header name to its value
	headerSep string
	argv      func(args models.ExecArgs) []string
}

var strategies = map[DownloaderKind]strategy{
	MediaGo: {
		headerSep: "~",
		argv: func(args models.ExecArgs) []string {
			argv := []string{"--url", args.URL, "--path", args.WorkDir, "--name", args.Name}
			if args.Headers != "" {
				argv = append(argv, "--headers", args.Headers)
			}
			return argv
		},
	},
	M3u8DLCli: {
		headerSep: ":",
		argv: func(args models.ExecArgs) []string {
			argv := []string{args.URL, "--workDir", args.WorkDir, "--saveName", args.Name}
			if args.Headers != "" {
				argv = append(argv, "--headers", args.Headers)
			}
			if args.DeleteSegments {
				argv = append(argv, "--enableDelAfterDone")
			}
			return argv
		},
	},
}

// Kinds returns every supported downloader
func Kinds() []DownloaderKind {
	return []DownloaderKind{MediaGo, M3u8DLCli}
}

// ParseKind maps an exeFile setting to a DownloaderKind
func ParseKind(name string) (DownloaderKind, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".exe")
	kind := DownloaderKind(name)
	if _, ok := strategies[kind]; !ok {
		return "", &apperrors.ErrUnknownDownloader{Name: name}
	}
	return kind, nil
}

// String returns the executable base name
func (k DownloaderKind) String() string {
	return string(k)
}

// HeaderString serializes headers in the downloader's encoding. Entries are joined
// with "|" in name order; an empty map yields "".
func (k DownloaderKind) HeaderString(headers map[string]string) string {
	s, ok := strategies[k]
	if !ok || len(headers) == 0 {
		return ""
	}
	parts := make([]string, 0, len(headers))
	for _, name := range models.SortedHeaderNames(headers) {
		parts = append(parts, name+s.headerSep+headers[name])
	}
	return strings.Join(parts, "|")
}

// Argv builds the command line arguments for one run
func (k DownloaderKind) Argv(args models.ExecArgs) []string {
	s, ok := strategies[k]
	if !ok {
		return nil
	}
	return s.argv(args)
}
