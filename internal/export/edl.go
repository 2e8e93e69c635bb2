package export

import (
	"fmt"
	"strings"

	"github.com/clipforge/clipforge-agent/internal/timeline"
	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// BuildEvents flattens an edited timeline into EDL events. Trimmed
// material is skipped entirely; record times advance by each span's
// played duration so the record track has no gaps.
func BuildEvents(tl *timeline.Timeline, clipName, mediaPath string) []Event {
	var events []Event
	recordOffset := 0.0
	for _, span := range tl.VisibleSpans() {
		played := (span.End - span.Start) / span.Speed
		events = append(events, Event{
			ClipName:  clipName,
			MediaPath: mediaPath,
			SourceIn:  span.Start,
			SourceOut: span.End,
			RecordIn:  recordOffset,
			RecordOut: recordOffset + played,
			Speed:     span.Speed,
		})
		recordOffset += played
	}
	return events
}

// GenerateEDL renders events as a CMX 3600 style edit decision list.
// Spans playing at a non-unit speed get an M2 motion memo carrying the
// effective frame rate.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if timeutil.IsDropFrameRate(frameRate) {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range events {
		srcIn := timeutil.Timecode(ev.SourceIn, frameRate)
		srcOut := timeutil.Timecode(ev.SourceOut, frameRate)
		recIn := timeutil.Timecode(ev.RecordIn, frameRate)
		recOut := timeutil.Timecode(ev.RecordOut, frameRate)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", srcIn, srcOut, recIn, recOut),
		)
		if ev.Speed != 1.0 {
			lines = append(lines,
				fmt.Sprintf("M2   %-8s %5.1f %s", "AX", ev.Speed*frameRate, srcIn),
			)
		}
		lines = append(lines,
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName),
			fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaPath),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
