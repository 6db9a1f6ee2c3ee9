package timestamps

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inline token", "hello1:2:3.45world", "hello\n1:02:03.4world"},
		{"already canonical on own line", "intro\n0:01:02.3 text", "intro\n0:01:02.3 text"},
		{"start of text", "1:02:03 go", "1:02:03.0 go"},
		{"hour leading zero", "a 01:5:07.99 b", "a \n1:05:07.9 b"},
		{"zero hour", "x 00:00:01.0", "x \n0:00:01.0"},
		{"space before token", "one two 0:00:05.12 three", "one two \n0:00:05.1 three"},
		{"two tokens", "a0:0:1b0:0:2c", "a\n0:00:01.0b\n0:00:02.0c"},
		{"no tokens", "plain text only", "plain text only"},
		{"empty", "", ""},
		{"three digit hour", "123:04:05", "123:04:05"},
		{"too many groups", "1:02:03:04", "1:02:03:04"},
		{"trailing digit", "1:02:034", "1:02:034"},
		{"preceded by period", "v.1:02:03", "v.1:02:03"},
		{"two groups only", "at 12:30 today", "at 12:30 today"},
		{"period without fraction", "1:2:3.x", "1:02:03.0.x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"hello1:2:3.45world",
		"a0:0:1b0:0:2c",
		"line\n\n2:3:4 tail",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format("07", "3", "9", "987"); got != "7:03:09.9" {
		t.Fatalf("Format = %q", got)
	}
	if got := Format("0", "00", "00", ""); got != "0:00:00.0" {
		t.Fatalf("Format = %q", got)
	}
}

func TestIsCanonical(t *testing.T) {
	for s, want := range map[string]bool{
		"1:02:03.4":  true,
		"0:00:00.0":  true,
		"01:02:03.4": false,
		"1:2:03.4":   false,
		"1:02:03":    false,
	} {
		if got := IsCanonical(s); got != want {
			t.Fatalf("IsCanonical(%q) = %v, want %v", s, got, want)
		}
	}
}
