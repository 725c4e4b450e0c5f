package huozi

import (
	"math"
	"testing"

	"github.com/mazznoer/csscolorparser"
)

func TestParseColorFormats(t *testing.T) {
	cases := []string{"#f00", "#ff0000", "#ff0000ff", "red", "rgb(255,0,0)", "rgba(255,0,0,1)", "hsl(0,100%,50%)"}
	for _, s := range cases {
		c, err := ParseColor(s)
		if err != nil {
			t.Fatalf("ParseColor(%q) error: %v", s, err)
		}
		if math.Abs(c.R-1) > 1e-6 || c.G > 1e-6 || c.B > 1e-6 {
			t.Errorf("ParseColor(%q) = %+v, want red", s, c)
		}
	}
}

func TestColorValueSRGBIsIdentity(t *testing.T) {
	c := csscolorparser.Color{R: 0.5, G: 0.25, B: 0.75, A: 1}
	got := ColorValue(c, ColorSpaceSRGB)
	want := [4]float32{0.5, 0.25, 0.75, 1}
	if got != want {
		t.Errorf("ColorValue(SRGB) = %v, want %v", got, want)
	}
}

func TestColorValueLinearConvertsGamma(t *testing.T) {
	c := csscolorparser.Color{R: 1, G: 0, B: 0, A: 1}
	got := ColorValue(c, ColorSpaceLinear)
	if got[0] != 1 {
		t.Errorf("linear R for full intensity should stay 1, got %v", got[0])
	}
	mid := csscolorparser.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	lin := ColorValue(mid, ColorSpaceLinear)
	if lin[0] <= 0 || lin[0] >= 0.5 {
		t.Errorf("sRGB 0.5 should convert to a smaller linear value, got %v", lin[0])
	}
}

func TestColorSpaceString(t *testing.T) {
	if ColorSpaceLinear.String() != "Linear" {
		t.Error("ColorSpaceLinear.String() mismatch")
	}
	if ColorSpaceSRGB.String() != "SRGB" {
		t.Error("ColorSpaceSRGB.String() mismatch")
	}
}
