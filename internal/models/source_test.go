// Tests for status transitions, validity and header parsing.
package models

import (
	"reflect"
	"testing"
)

var allStatuses = []SourceStatus{
	SourceStatusReady,
	SourceStatusDownloading,
	SourceStatusSuccess,
	SourceStatusFailed,
}

func TestCanTransition_OnlyAllowedEdges(t *testing.T) {
	allowed := map[[2]SourceStatus]bool{
		{SourceStatusReady, SourceStatusDownloading}:   true,
		{SourceStatusDownloading, SourceStatusSuccess}: true,
		{SourceStatusDownloading, SourceStatusFailed}:  true,
		{SourceStatusDownloading, SourceStatusReady}:   true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[[2]SourceStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransition_FinishedStatusesAreTerminal(t *testing.T) {
	for _, from := range allStatuses {
		if !from.IsFinished() {
			continue
		}
		for _, to := range allStatuses {
			if CanTransition(from, to) {
				t.Errorf("Expected %s to be terminal, but it may move to %s", from, to)
			}
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	if CanTransition(SourceStatus("paused"), SourceStatusReady) {
		t.Error("Expected unknown status to have no transitions")
	}
	if CanTransition(SourceStatusReady, SourceStatus("paused")) {
		t.Error("Expected transition to unknown status to be rejected")
	}
}

func TestSourceStatus_Valid(t *testing.T) {
	for _, s := range allStatuses {
		if !s.Valid() {
			t.Errorf("Expected %s to be valid", s)
		}
	}
	if SourceStatus("").Valid() {
		t.Error("Expected empty status to be invalid")
	}
}

func TestSourceStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status SourceStatus
		want   bool
	}{
		{SourceStatusReady, false},
		{SourceStatusDownloading, false},
		{SourceStatusSuccess, true},
		{SourceStatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsFinished(); got != tt.want {
			t.Errorf("%s.IsFinished() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", nil},
		{"single", "Origin: https://www.sample.com", map[string]string{"Origin": "https://www.sample.com"}},
		{
			"multiple lines with blanks",
			"Origin: https://www.sample.com\n\nReferer: https://www.sample.com/page\r\n",
			map[string]string{"Origin": "https://www.sample.com", "Referer": "https://www.sample.com/page"},
		},
		{"line without colon", "garbage\nCookie: a=b", map[string]string{"Cookie": "a=b"}},
		{"empty name", ": value", nil},
		{"value keeps later colons", "Referer:http://x.com:8080/", map[string]string{"Referer": "http://x.com:8080/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHeaders(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHeaders(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSortedHeaderNames(t *testing.T) {
	got := SortedHeaderNames(map[string]string{"Referer": "a", "Cookie": "b", "Origin": "c"})
	want := []string{"Cookie", "Origin", "Referer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedHeaderNames = %v, want %v", got, want)
	}
}

func TestEnvelope(t *testing.T) {
	ok := Success("data")
	if !ok.OK() || ok.Data != "data" {
		t.Errorf("unexpected success envelope: %+v", ok)
	}
	fail := Failure(CodeFailure, "boom")
	if fail.OK() || fail.Msg != "boom" {
		t.Errorf("unexpected failure envelope: %+v", fail)
	}
}
