package valkey

import "testing"

func TestOperation(t *testing.T) {
	tests := map[string]string{
		"roads:id:123":                   "roads:id",
		"cities:list::false:50:0":        "cities:list",
		"locations:nearby:16.8:96.1:1:5": "locations:nearby",
		"plain":                          "plain",
		"one:colon":                      "one:colon",
	}
	for key, want := range tests {
		if got := operation(key); got != want {
			t.Errorf("operation(%q) = %q, want %q", key, got, want)
		}
	}
}
