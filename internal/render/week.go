// Package render рисует недельную сетку слотов и записей в PNG
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 150
	dayPaddingX      = 8
	minBlockHeight   = 8.0
	blockRadius      = 6.0
	shadowOffset     = 3.0
	daysInWeek       = 7
	hourPadding      = 1
	defaultFirstHour = 7
	defaultLastHour  = 17
)

const (
	titleFontSize  = 25.0
	dayFontSize    = 24.0
	hourFontSize   = 18.0
	blockFontSize  = 16.0
	legendFontSize = 12.0
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 90}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}
	nowLineColor   = color.NRGBA{255, 80, 80, 200}
	shadowColor    = color.RGBA{0, 0, 0, 20}
	blockTextColor = color.RGBA{20, 24, 28, 230}

	freeSlotColor   = color.RGBA{133, 193, 85, 160}
	pendingColor    = color.RGBA{255, 214, 102, 230}
	approvedColor   = color.RGBA{100, 160, 230, 230}
	requestedColor  = color.RGBA{255, 160, 90, 230}
	completedColor  = color.RGBA{158, 158, 158, 200}
	legendTextColor = color.RGBA{70, 74, 78, 220}
)

// Week данные для одной недели. Start может быть любым днём недели.
type Week struct {
	Start        time.Time
	Now          time.Time
	Slots        []*model.AvailabilitySlot
	Appointments []*model.Appointment
}

type block struct {
	start model.Clock
	end   model.Clock
	label string
	fill  color.RGBA
}

type hourRange struct {
	first int
	last  int
}

func (h hourRange) total() int {
	return h.last - h.first + 1
}

var (
	fontsOnce sync.Once
	regular   *opentype.Font
	bold      *opentype.Font
)

func setFont(dc *gg.Context, size float64, useBold bool) {
	fontsOnce.Do(func() {
		regular, _ = opentype.Parse(goregular.TTF)
		bold, _ = opentype.Parse(gobold.TTF)
	})

	f := regular
	if useBold && bold != nil {
		f = bold
	}
	if f == nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// WeekPNG свободные слоты рисуются подложкой, активные записи поверх них
func WeekPNG(w Week) ([]byte, error) {
	monday := weekStart(w.Start)
	days := groupByDay(w)
	hours := hourSpan(days)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / daysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total())

	drawTitle(dc, monday)
	drawHourLabels(dc, hours, cellHeight)

	today := dateOf(w.Now)
	for i := 0; i < daysInWeek; i++ {
		date := monday.AddDate(0, 0, i)
		x := float64(leftLabelsWidth + i*dayWidth)
		isToday := !w.Now.IsZero() && date.Format(model.DateLayout) == today

		drawDayBackground(dc, x, dayWidth, dayHeight, i, isToday)
		drawDayHeader(dc, date, x, dayWidth)
		drawHourLines(dc, x, dayWidth, hours, cellHeight)
		for _, b := range days[date.Format(model.DateLayout)] {
			drawBlock(dc, b, x, dayWidth, hours, cellHeight)
		}
		if isToday {
			drawNowLine(dc, w.Now, x, dayWidth, hours, cellHeight)
		}
	}

	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func dateOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func groupByDay(w Week) map[string][]block {
	days := make(map[string][]block)
	for _, s := range w.Slots {
		if s.Booked {
			continue
		}
		days[s.Date] = append(days[s.Date], block{start: s.StartTime, end: s.EndTime, fill: freeSlotColor})
	}
	for _, a := range w.Appointments {
		if !a.Status.IsActive() {
			continue
		}
		days[a.Date] = append(days[a.Date], block{
			start: a.StartTime,
			end:   a.EndTime,
			label: a.StudentName,
			fill:  statusColor(a.Status),
		})
	}
	return days
}

func hourSpan(days map[string][]block) hourRange {
	first, last := 24, 0
	for _, blocks := range days {
		for _, b := range blocks {
			endHour := b.end.Hour()
			if b.end.Minute() > 0 {
				endHour++
			}
			first = min(first, b.start.Hour())
			last = max(last, endHour)
		}
	}
	if first == 24 {
		first, last = defaultFirstHour, defaultLastHour
	}
	return hourRange{first: max(first-hourPadding, 0), last: min(last+hourPadding, 23)}
}

func statusColor(status model.AppointmentStatus) color.RGBA {
	switch status {
	case model.StatusPending:
		return pendingColor
	case model.StatusApproved:
		return approvedColor
	case model.StatusCancelRequested:
		return requestedColor
	default:
		return completedColor
	}
}

func drawTitle(dc *gg.Context, monday time.Time) {
	sunday := monday.AddDate(0, 0, 6)
	title := monthName(monday.Month())
	if sunday.Month() != monday.Month() {
		title += " - " + monthName(sunday.Month())
	}
	title += fmt.Sprintf(" %d", sunday.Year())

	setFont(dc, titleFontSize, true)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/4, 0, 0.5)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	setFont(dc, hourFontSize, false)
	dc.SetColor(hourLabelColor)
	for i := 0; i < hours.total(); i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hours.first+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x float64, dayWidth, dayHeight, index int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case index%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, float64(headerHeight), float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x float64, dayWidth int) {
	setFont(dc, dayFontSize, true)
	dc.SetColor(textColor)
	center := x + float64(dayWidth)/2
	dc.DrawStringAnchored(date.Format("02.01"), center, float64(headerHeight), 0.5, -1)
	dc.DrawStringAnchored(weekdayShort(date.Weekday()), center, float64(headerHeight), 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total(); i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawLine(x, y, x+float64(dayWidth), y)
		dc.Stroke()
	}
}

func drawBlock(dc *gg.Context, b block, x float64, dayWidth int, hours hourRange, cellHeight float64) {
	top := float64(headerHeight) + (hoursOf(b.start)-float64(hours.first))*cellHeight
	height := (hoursOf(b.end) - hoursOf(b.start)) * cellHeight
	if height < minBlockHeight {
		height = minBlockHeight
	}
	left := x + dayPaddingX
	width := float64(dayWidth) - 2*dayPaddingX

	dc.SetColor(shadowColor)
	dc.DrawRoundedRectangle(left+shadowOffset, top+2+shadowOffset, width, height-4, blockRadius)
	dc.Fill()

	dc.SetColor(b.fill)
	dc.DrawRoundedRectangle(left, top+2, width, height-4, blockRadius)
	dc.Fill()

	dc.SetColor(darken(b.fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(left, top+2, width, height-4, blockRadius)
	dc.Stroke()

	setFont(dc, blockFontSize, false)
	dc.SetColor(blockTextColor)
	dc.DrawStringAnchored(b.start.String(), left+8, top+18, 0, 0)

	if b.label != "" && height > 25 {
		label := []rune(b.label)
		if len(label) > 18 {
			label = append(label[:15], []rune("...")...)
		}
		setFont(dc, blockFontSize-2, false)
		dc.DrawStringAnchored(string(label), left+8, top+34, 0, 0)
	}
}

func drawNowLine(dc *gg.Context, now time.Time, x float64, dayWidth int, hours hourRange, cellHeight float64) {
	current := float64(now.Hour()) + float64(now.Minute())/60
	if current < float64(hours.first) || current > float64(hours.last+1) {
		return
	}
	y := float64(headerHeight) + (current-float64(hours.first))*cellHeight
	dc.SetColor(nowLineColor)
	dc.SetLineWidth(2)
	dc.DrawLine(x, y, x+float64(dayWidth), y)
	dc.Stroke()
}

func drawLegend(dc *gg.Context, dayWidth int) {
	items := []struct {
		label string
		fill  color.RGBA
	}{
		{"Свободно", freeSlotColor},
		{"Ожидает", pendingColor},
		{"Подтверждена", approvedColor},
		{"Запрос отмены", requestedColor},
		{"Проведена", completedColor},
	}

	x := float64(leftLabelsWidth+daysInWeek*dayWidth) + 10
	y := float64(imageHeight) - 160
	for _, item := range items {
		dc.SetColor(item.fill)
		dc.DrawRoundedRectangle(x, y, 20, 14, 3)
		dc.Fill()

		setFont(dc, legendFontSize, false)
		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored(item.label, x+28, y+8, 0, 0.2)
		y += 28
	}
}

func hoursOf(c model.Clock) float64 {
	return float64(c.Hour()) + float64(c.Minute())/60
}

func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func weekdayShort(d time.Weekday) string {
	return [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}[d]
}

func monthName(m time.Month) string {
	return [...]string{"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь"}[m]
}
