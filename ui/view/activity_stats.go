package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"

	"github.com/soocke/detection-overlay-go/ui/theme"
)

// ActivityStats shows the current and total overlay-active durations.
type ActivityStats interface {
	SetCurrent(d time.Duration)
	SetTotal(d time.Duration)
}

type activityStats struct {
	currentLbl *TLabelWidget
	totalLbl   *TLabelWidget
}

// NewActivityStats places the current label at (row, startCol) and the total
// label at (row, startCol+1), inside parent when it is non-nil.
func NewActivityStats(parent *FrameWidget, row, startCol int) ActivityStats {
	s := &activityStats{
		currentLbl: TLabel(Width(14), Style(theme.StyleMutedLabel)),
		totalLbl:   TLabel(Width(14), Style(theme.StyleMutedLabel)),
	}
	if parent != nil {
		Grid(s.currentLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.totalLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	} else {
		Grid(s.currentLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.totalLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	}
	s.currentLbl.Configure(Txt("Active: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	return s
}

func formatMinSec(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (s *activityStats) SetCurrent(d time.Duration) {
	if s == nil || s.currentLbl == nil {
		return
	}
	s.currentLbl.Configure(Txt("Active: " + formatMinSec(d)))
}

func (s *activityStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + formatMinSec(d)))
}
