package core

import (
	"errors"
	"testing"
)

func TestResolver_RoundTrip(t *testing.T) {
	r := NewResolver(Catalog{Type: "Move", Names: testMoves})

	for id, name := range testMoves {
		got, err := r.Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q): unexpected error %v", name, err)
		}
		if got != id {
			t.Errorf("Resolve(%q) = %d, want %d", name, got, id)
		}
		if back, _ := r.Resolve(r.Format(id)); back != id {
			t.Errorf("Resolve(Format(%d)) = %d", id, back)
		}
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(Catalog{Type: "Move", Names: []string{"Tackle", "Growl", "Thunder Punch", "Growl"}})

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"exact name", "Growl", 1, false},
		{"case folded", "tACKLE", 0, false},
		{"whitespace collapsed", "  thunder    PUNCH ", 2, false},
		{"duplicate name resolves to first index", "growl", 1, false},
		{"blank is empty sentinel", "", NoMove, false},
		{"whitespace is empty sentinel", "   ", NoMove, false},
		{"hash index", "#3", 3, false},
		{"typed index", "Move #2", 2, false},
		{"typed index any case", "move #0", 0, false},
		{"hash index out of range", "#4", NoMove, true},
		{"negative hash index", "#-1", NoMove, true},
		{"bad hash index", "#abc", NoMove, true},
		{"bare number is not an index", "2", NoMove, true},
		{"unknown name", "Splash", NoMove, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %d, want %d", tt.input, got, tt.want)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("error %v does not wrap ErrNotFound", err)
				}
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Value == "" {
					t.Errorf("error %v should be a ValidationError naming the input", err)
				}
			}
		})
	}
}

func TestResolver_Format(t *testing.T) {
	r := NewResolver(Catalog{Type: "Move", Names: []string{"Tackle", "Growl", "", "Tackle"}})

	tests := []struct {
		id   int
		want string
	}{
		{NoMove, ""},
		{0, "Tackle"},
		{1, "Growl"},
		{2, "Move #2"}, // unnamed
		{3, "Move #3"}, // shadowed by index 0
		{42, "Move #42"},
	}

	for _, tt := range tests {
		if got := r.Format(tt.id); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
