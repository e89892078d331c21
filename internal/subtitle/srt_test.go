package subtitle

import (
	"math"
	"strings"
	"testing"

	"github.com/lacasadark/casadark-core/internal/scene"
)

func twoSceneFixture() []scene.Scene {
	return []scene.Scene{
		{Number: 1, Text: "Hello world. This is a test.", StartSeconds: 0, EndSeconds: 10},
		{Number: 2, Text: "Second scene here.", StartSeconds: 10, EndSeconds: 15},
	}
}

func TestGenerateNarrationSRT_TwoScenes(t *testing.T) {
	got := GenerateNarrationSRT(twoSceneFixture(), NarrationOptions{MaxCharsPerBlock: 499, GapBetweenScenes: 10})

	want := "1\n00:00:00,000 --> 00:00:10,000\nHello world. This is a test.\n" +
		"\n" +
		"2\n00:00:20,000 --> 00:00:25,000\nSecond scene here.\n"
	if got != want {
		t.Fatalf("GenerateNarrationSRT() =\n%q\nwant\n%q", got, want)
	}
}

func TestNarrationBlocks_ProportionalToWords(t *testing.T) {
	scenes := []scene.Scene{{Number: 1, Text: "One two three. Four.", StartSeconds: 30, EndSeconds: 38}}

	blocks := NarrationBlocks(scenes, NarrationOptions{MaxCharsPerBlock: 15, GapBetweenScenes: 1})
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	assertBlock(t, blocks[0], 1, 0, 6, "One two three.")
	assertBlock(t, blocks[1], 2, 7, 9, "Four.")
}

func TestNarrationBlocks_SkipsEmptyScenes(t *testing.T) {
	scenes := []scene.Scene{
		{Number: 1, Text: "   ", StartSeconds: 0, EndSeconds: 4},
		{Number: 2, Text: "Hi there.", StartSeconds: 4, EndSeconds: 6},
	}

	blocks := NarrationBlocks(scenes, DefaultNarrationOptions())
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	assertBlock(t, blocks[0], 1, 0, 2, "Hi there.")
}

func TestNarrationBlocks_GapOptions(t *testing.T) {
	scenes := twoSceneFixture()

	zeroGap := NarrationBlocks(scenes, NarrationOptions{GapBetweenScenes: 0})
	if zeroGap[1].StartSeconds != 10 {
		t.Fatalf("zero gap: second block starts at %v, want 10", zeroGap[1].StartSeconds)
	}

	negative := NarrationBlocks(scenes, NarrationOptions{GapBetweenScenes: -1})
	if negative[1].StartSeconds != 20 {
		t.Fatalf("negative gap: second block starts at %v, want default 20", negative[1].StartSeconds)
	}
}

func TestNarrationBlocks_NeverEndsBeforeStart(t *testing.T) {
	scenes := []scene.Scene{{Number: 1, Text: "Backwards time.", StartSeconds: 5, EndSeconds: 2}}

	blocks := NarrationBlocks(scenes, DefaultNarrationOptions())
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].EndSeconds < blocks[0].StartSeconds {
		t.Fatalf("block ends at %v before it starts at %v", blocks[0].EndSeconds, blocks[0].StartSeconds)
	}
}

func TestNarrationBlocks_MonotonicStarts(t *testing.T) {
	scenes := []scene.Scene{
		{Number: 1, Text: longProse(20), StartSeconds: 0, EndSeconds: 90},
		{Number: 2, Text: "Short.", StartSeconds: 90, EndSeconds: 91},
		{Number: 3, Text: longProse(9), StartSeconds: 91, EndSeconds: 120},
	}

	blocks := NarrationBlocks(scenes, DefaultNarrationOptions())
	for i := 1; i < len(blocks); i++ {
		if blocks[i].StartSeconds < blocks[i-1].StartSeconds {
			t.Fatalf("block %d starts at %v before block %d at %v",
				i+1, blocks[i].StartSeconds, i, blocks[i-1].StartSeconds)
		}
		if blocks[i].Index != i+1 {
			t.Fatalf("block %d has index %d", i+1, blocks[i].Index)
		}
	}
}

func TestGenerateSimpleSRT(t *testing.T) {
	got := GenerateSimpleSRT(twoSceneFixture())

	want := "1\n00:00:00,000 --> 00:00:10,000\nHello world. This is a test.\n" +
		"\n" +
		"2\n00:00:10,000 --> 00:00:15,000\nSecond scene here.\n"
	if got != want {
		t.Fatalf("GenerateSimpleSRT() =\n%q\nwant\n%q", got, want)
	}
}

func TestValidateSRTBlocks(t *testing.T) {
	srt := GenerateNarrationSRT([]scene.Scene{
		{Number: 1, Text: longProse(20), StartSeconds: 0, EndSeconds: 60},
	}, DefaultNarrationOptions())

	if !ValidateSRTBlocks(srt, 499) {
		t.Fatal("ValidateSRTBlocks() = false for generated narration")
	}
	if got := CountSRTBlocks(srt); got != 3 {
		t.Fatalf("CountSRTBlocks() = %d, want 3", got)
	}
	if ValidateSRTBlocks(srt, 100) {
		t.Fatal("ValidateSRTBlocks() = true with a limit below the block length")
	}
}

func TestCountSRTBlocks(t *testing.T) {
	tests := []struct {
		name string
		srt  string
		want int
	}{
		{name: "empty", srt: "", want: 0},
		{name: "whitespace", srt: "\n\n  \n", want: 0},
		{name: "crlf", srt: "1\r\n00:00:00,000 --> 00:00:01,000\r\nA\r\n\r\n2\r\n00:00:01,000 --> 00:00:02,000\r\nB\r\n", want: 2},
		{name: "blank line with spaces", srt: "1\n00:00:00,000 --> 00:00:01,000\nA\n  \n2\n00:00:01,000 --> 00:00:02,000\nB", want: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountSRTBlocks(tc.srt); got != tc.want {
				t.Fatalf("CountSRTBlocks() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGenerateNarrationVTT(t *testing.T) {
	vtt, err := GenerateNarrationVTT(twoSceneFixture(), DefaultNarrationOptions())
	if err != nil {
		t.Fatalf("GenerateNarrationVTT() error = %v", err)
	}
	if !strings.HasPrefix(vtt, "WEBVTT") {
		t.Fatalf("missing WEBVTT header: %q", vtt)
	}
	if !strings.Contains(vtt, "00:00:20.000 --> 00:00:25.000") {
		t.Fatalf("missing second cue timing: %q", vtt)
	}
	if !strings.Contains(vtt, "Second scene here.") {
		t.Fatalf("missing cue text: %q", vtt)
	}
}

func TestWriteVTT_Empty(t *testing.T) {
	var sb strings.Builder
	if err := WriteVTT(&sb, nil); err != nil {
		t.Fatalf("WriteVTT() error = %v", err)
	}
	if sb.String() != "WEBVTT\n" {
		t.Fatalf("WriteVTT(nil) = %q", sb.String())
	}
}

func assertBlock(t *testing.T, b SrtBlock, index int, start, end float64, text string) {
	t.Helper()
	if b.Index != index {
		t.Errorf("index = %d, want %d", b.Index, index)
	}
	if math.Abs(b.StartSeconds-start) > 1e-9 {
		t.Errorf("block %d start = %v, want %v", index, b.StartSeconds, start)
	}
	if math.Abs(b.EndSeconds-end) > 1e-9 {
		t.Errorf("block %d end = %v, want %v", index, b.EndSeconds, end)
	}
	if b.Text != text {
		t.Errorf("block %d text = %q, want %q", index, b.Text, text)
	}
}

func TestNarrationSRT_ParagraphsStayInOneEntry(t *testing.T) {
	scenes := []scene.Scene{
		{Number: 1, Text: "First paragraph\n\nsecond paragraph", StartSeconds: 0, EndSeconds: 4},
		{Number: 2, Text: "Fim.\r\n\r\n  Mesmo.", StartSeconds: 4, EndSeconds: 6},
	}
	opts := NarrationOptions{MaxCharsPerBlock: 499, GapBetweenScenes: 0}

	blocks := NarrationBlocks(scenes, opts)
	srt := GenerateNarrationSRT(scenes, opts)
	if got := CountSRTBlocks(srt); got != len(blocks) {
		t.Fatalf("CountSRTBlocks() = %d, want %d for %q", got, len(blocks), srt)
	}
	if blocks[0].Text != "First paragraph second paragraph" {
		t.Errorf("block text = %q", blocks[0].Text)
	}
	for _, b := range blocks {
		if strings.Contains(b.Text, "\n") {
			t.Errorf("block %d keeps a line break: %q", b.Index, b.Text)
		}
	}
}

func TestSimpleSRT_DropsBlankLines(t *testing.T) {
	scenes := []scene.Scene{
		{Number: 1, Text: "Linha um\n\n  \nLinha dois", StartSeconds: 0, EndSeconds: 2},
		{Number: 2, Text: "Tchau.", StartSeconds: 2, EndSeconds: 3},
	}
	blocks := SimpleBlocks(scenes)
	if blocks[0].Text != "Linha um\nLinha dois" {
		t.Errorf("block text = %q", blocks[0].Text)
	}
	if got := CountSRTBlocks(GenerateSimpleSRT(scenes)); got != 2 {
		t.Errorf("CountSRTBlocks() = %d, want 2", got)
	}
}
