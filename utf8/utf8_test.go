package utf8

import "testing"

func TestDecompose(t *testing.T) {
	tests := []struct {
		letter string
		want   []byte
	}{
		{"a", []byte{0x61}},
		{"é", []byte{0xc3, 0xa9}},
		{"あ", []byte{0xe3, 0x81, 0x82}},
		{"𐍈", []byte{0xf0, 0x90, 0x8d, 0x88}},
	}
	for _, tt := range tests {
		got, err := Decompose(tt.letter)
		if err != nil {
			t.Fatalf("Decompose(%q): %v", tt.letter, err)
		}
		if string(got) != string(tt.want) {
			t.Fatalf("Decompose(%q) = % x, want % x", tt.letter, got, tt.want)
		}
	}
}

func TestDecompose_RejectsMultiRune(t *testing.T) {
	_, err := Decompose("ab")
	if err == nil {
		t.Fatal("expected error for multi-rune input")
	}
}

func TestDecompose_RejectsEmpty(t *testing.T) {
	_, err := Decompose("")
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}
