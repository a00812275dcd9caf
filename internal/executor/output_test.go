package executor

import (
	"fmt"
	"strings"
	"testing"
)

func TestOutputBuffer_KeepsLastLines(t *testing.T) {
	b := NewOutputBuffer(3)
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(b, "line %d\n", i)
	}
	if got, want := b.String(), "line 3\nline 4\nline 5"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestOutputBuffer_JoinsPartialWrites(t *testing.T) {
	b := NewOutputBuffer(10)
	_, _ = b.Write([]byte("down"))
	_, _ = b.Write([]byte("loading 50%\r\n\n"))
	_, _ = b.Write([]byte("done"))

	if got, want := b.String(), "downloading 50%\ndone"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestOutputBuffer_PartialTailRespectsLimit(t *testing.T) {
	b := NewOutputBuffer(2)
	_, _ = b.Write([]byte("a\nb\nc"))
	if got, want := b.String(), "b\nc"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestOutputBuffer_CarriageReturnProgressStaysBounded(t *testing.T) {
	b := NewOutputBuffer(20)
	for i := 0; i < 200000; i++ {
		_, _ = b.Write([]byte("\rDownloading segment 1234/5678 42.3% 3.2MB/s"))
	}
	_, _ = b.Write([]byte("\r\nMerging segments\n"))

	got := b.String()
	if len(got) > 20*64 {
		t.Fatalf("Expected bounded output, got %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "Downloading segment 1234/5678 42.3% 3.2MB/s\nMerging segments") {
		t.Errorf("Unexpected tail %q", got)
	}
}

func TestOutputBuffer_CapsUnterminatedLine(t *testing.T) {
	b := NewOutputBuffer(5)
	chunk := []byte(strings.Repeat("x", 1000))
	for i := 0; i < 100; i++ {
		_, _ = b.Write(chunk)
	}
	_, _ = b.Write([]byte("end"))

	got := b.String()
	if len(got) != MaxLineBytes {
		t.Fatalf("Expected %d bytes, got %d", MaxLineBytes, len(got))
	}
	if !strings.HasSuffix(got, "xxend") {
		t.Errorf("Expected the latest bytes to be kept, got suffix %q", got[len(got)-10:])
	}
}
