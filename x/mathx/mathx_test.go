package mathx

import "testing"

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 3, 0) != 2 {
		t.Fatal("clamp bounds wrong")
	}
}

func TestDigitCount(t *testing.T) {
	cases := map[uint16]int{0: 1, 9: 1, 10: 2, 99: 2, 100: 3, 65535: 5}
	for v, want := range cases {
		if got := DigitCount(v); got != want {
			t.Fatalf("DigitCount(%d) = %d, want %d", v, got, want)
		}
	}
}
