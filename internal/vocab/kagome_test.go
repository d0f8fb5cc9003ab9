package vocab

import (
	"reflect"
	"testing"
)

func TestKagomeTokenizer_Extract(t *testing.T) {
	tok, err := NewKagomeTokenizer()
	if err != nil {
		t.Fatalf("NewKagomeTokenizer() error = %v", err)
	}
	e := NewExtractor(tok, nil)

	items, err := e.Extract("猫が好きです")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := bases(items); !reflect.DeepEqual(got, []string{"猫", "好き"}) {
		t.Fatalf("bases = %v, want [猫 好き]", got)
	}
	if items[0].Reading != "ネコ" || items[0].POS != Noun {
		t.Errorf("猫 = %#v", items[0])
	}
}

func TestKagomeTokenizer_BaseForm(t *testing.T) {
	tok, err := NewKagomeTokenizer()
	if err != nil {
		t.Fatal(err)
	}
	items, err := NewExtractor(tok, nil).Extract("毎日ご飯を食べました。食べる")
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, it := range items {
		if it.Base == "食べる" {
			count++
			if it.POS != Verb {
				t.Errorf("食べる POS = %v", it.POS)
			}
		}
		if it.Base == "を" || it.Base == "ます" || it.Base == "た" || it.Base == "。" {
			t.Errorf("function word %q leaked", it.Base)
		}
	}
	if count != 1 {
		t.Errorf("食べる appears %d times, want 1", count)
	}
}

func TestKagomeTokenizer_OnlyParticles(t *testing.T) {
	tok, err := NewKagomeTokenizer()
	if err != nil {
		t.Fatal(err)
	}
	items, err := NewExtractor(tok, nil).Extract("が、を。")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("items = %#v, want none", items)
	}
}
