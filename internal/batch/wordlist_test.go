package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []WordEntry
	}{
		{
			name:    "words only",
			content: "猫\n犬\n",
			want:    []WordEntry{{Word: "猫"}, {Word: "犬"}},
		},
		{
			name:    "with translations",
			content: "猫 = cat\n好き=liked\r\n",
			want:    []WordEntry{{Word: "猫", Translation: "cat"}, {Word: "好き", Translation: "liked"}},
		},
		{
			name:    "comments, blanks, missing word",
			content: "# lesson 1\n\n   \n= cat\n食べる\n",
			want:    []WordEntry{{Word: "食べる"}},
		},
		{
			name:    "duplicates keep first",
			content: "猫 = cat\n猫 = kitty\n",
			want:    []WordEntry{{Word: "猫", Translation: "cat"}},
		},
		{
			name:    "full-width equals sign",
			content: "猫＝cat\n",
			want:    []WordEntry{{Word: "猫", Translation: "cat"}},
		},
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestReadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("猫 = cat\n犬\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadBatchFile(path)
	if err != nil {
		t.Fatalf("ReadBatchFile() error = %v", err)
	}
	if len(got) != 2 || got[1].Word != "犬" {
		t.Errorf("ReadBatchFile() = %#v", got)
	}
}

func TestReadBatchFile_NonExistent(t *testing.T) {
	_, err := ReadBatchFile("/nonexistent/words.txt")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}
