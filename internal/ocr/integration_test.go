package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func writeTestImage(t *testing.T, text string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 320, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)

	var buf bytes.Buffer
	if err := (&png.Encoder{}).Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sample.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestTesseractEngineAgainstRealBinary(t *testing.T) {
	ensureTesseractAvailable(t)

	path := writeTestImage(t, "Hello OCR")
	e := NewTesseractEngine(Config{}, nil)

	res, err := e.Recognize(context.Background(), path)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	var all []string
	for _, ln := range res.Lines {
		all = append(all, ln.Text)
	}
	got := strings.ToLower(strings.Join(all, " "))
	if !strings.Contains(got, "hello") || !strings.Contains(got, "ocr") {
		t.Fatalf("unexpected OCR output: %q", got)
	}

	withConf, err := e.RecognizeWithConfidence(context.Background(), path)
	if err != nil {
		t.Fatalf("RecognizeWithConfidence() error = %v", err)
	}
	if len(withConf.Lines) == 0 {
		t.Fatal("expected scored lines")
	}
	for _, ln := range withConf.Lines {
		if ln.Confidence < 0 || ln.Confidence > 1 {
			t.Fatalf("confidence out of range: %v", ln.Confidence)
		}
	}
}
