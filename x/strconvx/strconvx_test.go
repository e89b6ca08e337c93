package strconvx

import "testing"

func TestAppendIntUint(t *testing.T) {
	type C struct {
		i    int64
		base int
		want string
	}
	for _, c := range []C{
		{0, 10, "0"},
		{42, 10, "42"},
		{-15, 10, "-15"},
		{255, 16, "ff"},
		{5, 2, "101"},
	} {
		if got := string(AppendInt([]byte("x="), c.i, c.base)); got != "x="+c.want {
			t.Fatalf("AppendInt(%d,%d) = %q", c.i, c.base, got)
		}
	}
	if got := string(AppendUint(nil, 65535, 10)); got != "65535" {
		t.Fatalf("AppendUint = %q", got)
	}
	if got := FormatUint(35, 36); got != "z" {
		t.Fatalf("FormatUint(35,36) = %q", got)
	}
	if got := Itoa(-7); got != "-7" {
		t.Fatalf("Itoa(-7) = %q", got)
	}
}

func TestAppendBool(t *testing.T) {
	if string(AppendBool(nil, true)) != "true" || string(AppendBool(nil, false)) != "false" {
		t.Fatal("AppendBool")
	}
}

func TestAppendFloatFixed(t *testing.T) {
	type C struct {
		f    float64
		prec int
		want string
	}
	for _, c := range []C{
		{21.5, 2, "21.50"},
		{-3.25, 2, "-3.25"},
		{0.05, 2, "0.05"},
		{1013.0, 0, "1013"},
		{2.5, 1, "2.5"},
	} {
		if got := string(AppendFloat(nil, c.f, 'f', c.prec, 64)); got != c.want {
			t.Fatalf("AppendFloat(%v,%d) = %q, want %q", c.f, c.prec, got, c.want)
		}
	}
}
