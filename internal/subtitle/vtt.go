package subtitle

import (
	"bytes"
	"io"
	"math"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"github.com/lacasadark/casadark-core/internal/scene"
)

// WriteVTT writes blocks as a WebVTT document.
func WriteVTT(w io.Writer, blocks []SrtBlock) error {
	if len(blocks) == 0 {
		_, err := io.WriteString(w, "WEBVTT\n")
		return err
	}

	subs := astisub.NewSubtitles()
	for _, b := range blocks {
		item := &astisub.Item{
			StartAt: secondsToDuration(b.StartSeconds),
			EndAt:   secondsToDuration(b.EndSeconds),
		}
		for _, line := range strings.Split(b.Text, "\n") {
			item.Lines = append(item.Lines, astisub.Line{
				Items: []astisub.LineItem{{Text: line}},
			})
		}
		subs.Items = append(subs.Items, item)
	}
	return subs.WriteToWebVTT(w)
}

// GenerateNarrationVTT renders the narration layout as WebVTT.
func GenerateNarrationVTT(scenes []scene.Scene, opts NarrationOptions) (string, error) {
	var buf bytes.Buffer
	if err := WriteVTT(&buf, NarrationBlocks(scenes, opts)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}
