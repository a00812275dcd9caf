package executor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Belphemur/MediaDownloader/internal/apperrors"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    DownloaderKind
		wantErr bool
	}{
		{"mediago", MediaGo, false},
		{"N_m3u8DL-CLI", M3u8DLCli, false},
		{"N_m3u8DL-CLI.exe", M3u8DLCli, false},
		{" mediago ", MediaGo, false},
		{"yt-dlp", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, &apperrors.ErrUnknownDownloader{}) {
					t.Fatalf("Expected ErrUnknownDownloader, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestHeaderString(t *testing.T) {
	tests := []struct {
		name    string
		kind    DownloaderKind
		headers map[string]string
		want    string
	}{
		{"mediago single", MediaGo, map[string]string{"Origin": "https://x.com"}, "Origin~https://x.com"},
		{"m3u8dl single", M3u8DLCli, map[string]string{"Origin": "https://x.com"}, "Origin:https://x.com"},
		{
			"mediago sorted",
			MediaGo,
			map[string]string{"Referer": "https://x.com/p", "Cookie": "a=b"},
			"Cookie~a=b|Referer~https://x.com/p",
		},
		{
			"m3u8dl sorted",
			M3u8DLCli,
			map[string]string{"Referer": "https://x.com/p", "Cookie": "a=b"},
			"Cookie:a=b|Referer:https://x.com/p",
		},
		{"empty", MediaGo, nil, ""},
		{"unknown kind", DownloaderKind("other"), map[string]string{"Origin": "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.HeaderString(tt.headers); got != tt.want {
				t.Errorf("HeaderString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArgv(t *testing.T) {
	args := models.ExecArgs{
		URL:            "https://x.com/v.m3u8",
		WorkDir:        "/videos",
		Name:           "episode-1",
		Headers:        "Origin~https://x.com",
		DeleteSegments: true,
	}

	tests := []struct {
		name string
		kind DownloaderKind
		args models.ExecArgs
		want []string
	}{
		{
			"mediago with headers",
			MediaGo,
			args,
			[]string{"--url", "https://x.com/v.m3u8", "--path", "/videos", "--name", "episode-1", "--headers", "Origin~https://x.com"},
		},
		{
			"m3u8dl with headers and delete",
			M3u8DLCli,
			args,
			[]string{"https://x.com/v.m3u8", "--workDir", "/videos", "--saveName", "episode-1", "--headers", "Origin~https://x.com", "--enableDelAfterDone"},
		},
		{
			"m3u8dl minimal",
			M3u8DLCli,
			models.ExecArgs{URL: "u", WorkDir: "d", Name: "n"},
			[]string{"u", "--workDir", "d", "--saveName", "n"},
		},
		{"unknown kind", DownloaderKind("other"), args, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Argv(tt.args); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Argv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecutableName(t *testing.T) {
	if got := executableName("mediago", "windows"); got != "mediago.exe" {
		t.Errorf("windows name = %s", got)
	}
	if got := executableName("mediago.exe", "windows"); got != "mediago.exe" {
		t.Errorf("windows name with suffix = %s", got)
	}
	if got := executableName("mediago", "linux"); got != "mediago" {
		t.Errorf("linux name = %s", got)
	}
}
