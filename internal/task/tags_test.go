package task

import (
	"reflect"
	"testing"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"no tags", "plain text", []string{}},
		{"single tag", "fix the #build", []string{"#build"}},
		{"multiple tags", "#home chores and #errands", []string{"#home", "#errands"}},
		{"lowercased", "ship #Launch", []string{"#launch"}},
		{"deduplicated in order", "#a then #b then #A", []string{"#a", "#b"}},
		{"unicode letters", "meeting #встреча notes", []string{"#встреча"}},
		{"underscore and hyphen", "#to_do #follow-up", []string{"#to_do", "#follow-up"}},
		{"bare hash ignored", "just a # sign", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.text)
			if got == nil {
				t.Fatal("ExtractTags must never return nil")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
