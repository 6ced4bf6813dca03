package extract

import (
	"errors"
	"testing"
)

func TestFileID(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"file view path", "https://drive.google.com/file/d/1AbCdEf_-123/view?usp=sharing", "1AbCdEf_-123"},
		{"open by id", "https://drive.google.com/open?id=1AbCdEf_-123", "1AbCdEf_-123"},
		{"docs editor", "https://docs.google.com/document/d/1AbCdEf_-123/edit", "1AbCdEf_-123"},
		{"sheets editor", "https://docs.google.com/spreadsheets/d/1AbCdEf_-123/edit#gid=0", "1AbCdEf_-123"},
		{"slides editor", "https://docs.google.com/presentation/d/1AbCdEf_-123/edit", "1AbCdEf_-123"},
		{"uc download", "https://drive.google.com/uc?export=download&id=1AbCdEf_-123", "1AbCdEf_-123"},
		{"uc download id first", "https://drive.google.com/uc?id=1AbCdEf_-123&export=download", "1AbCdEf_-123"},
		{"generic id query", "https://drive.google.com/whatever?foo=bar&id=1AbCdEf_-123", "1AbCdEf_-123"},
		{"bare identifier", "1AbCdEf_-1234567890", "1AbCdEf_-1234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileID(tt.link)
			if err != nil {
				t.Fatalf("FileID(%q) returned error: %v", tt.link, err)
			}
			if got != tt.want {
				t.Errorf("FileID(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestFileIDSpecificPatternWins(t *testing.T) {
	// The file-view path must win over the generic id= query parameter.
	link := "https://drive.google.com/file/d/SPECIFIC_ID/view?id=GENERIC_ID"
	got, err := FileID(link)
	if err != nil {
		t.Fatalf("FileID returned error: %v", err)
	}
	if got != "SPECIFIC_ID" {
		t.Errorf("FileID = %q, want SPECIFIC_ID", got)
	}
}

func TestFileIDNotFound(t *testing.T) {
	for _, link := range []string{
		"",
		"https://example.com/some/page",
		"not a link at all!",
		"https://drive.google.com/drive/my-drive",
	} {
		if _, err := FileID(link); !errors.Is(err, ErrNoFileID) {
			t.Errorf("FileID(%q) error = %v, want ErrNoFileID", link, err)
		}
	}
}
