package repository

import (
	"strings"
	"time"

	"github.com/maheshrc27/postsheet/internal/models"
)

const (
	LegacySheet    = "Posts"
	LinkedInSheet  = "LinkedIn"
	PinterestSheet = "Pinterest"
	InstagramSheet = "Instagram"
	FacebookSheet  = "Facebook"

	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type column int

const (
	colID column = iota
	colPlatform
	colTitle
	colContent
	colImage
	colDate
	colTime
	colStatus
	colCreated
	colHashtags
	colBoard
	colPostID
)

type field struct {
	col    column
	header string
}

// sheetLayout is the column order of one sheet. Every platform sheet keeps
// its own field order.
type sheetLayout struct {
	title  string
	legacy bool
	fields []field
}

var legacyLayout = sheetLayout{
	title:  LegacySheet,
	legacy: true,
	fields: []field{
		{colID, "ID"},
		{colPlatform, "Platform"},
		{colTitle, "Title"},
		{colContent, "Content"},
		{colImage, "Image"},
		{colDate, "Date"},
		{colTime, "Time"},
		{colStatus, "Status"},
		{colCreated, "Created"},
	},
}

func networkLayout(title string) sheetLayout {
	return sheetLayout{
		title: title,
		fields: []field{
			{colID, "ID"},
			{colTitle, "Title"},
			{colContent, "Content"},
			{colImage, "ImageURL"},
			{colDate, "Publish Date"},
			{colTime, "Publish Time"},
			{colHashtags, "Hashtags"},
			{colPlatform, "Platform"},
			{colPostID, "Post ID"},
		},
	}
}

// Pinterest reserves column G for the board name and keeps hashtags last.
var pinterestLayout = sheetLayout{
	title: PinterestSheet,
	fields: []field{
		{colID, "ID"},
		{colTitle, "Title"},
		{colContent, "Content"},
		{colImage, "ImageURL"},
		{colDate, "Publish Date"},
		{colTime, "Publish Time"},
		{colBoard, "Board Name"},
		{colPlatform, "Platform"},
		{colPostID, "Post ID"},
		{colHashtags, "Hashtags"},
	},
}

// platformLayouts is in scan order: platform sheets are searched before the
// legacy ledger.
var platformLayouts = []sheetLayout{
	networkLayout(LinkedInSheet),
	pinterestLayout,
	networkLayout(InstagramSheet),
	networkLayout(FacebookSheet),
}

// layoutForPlatform routes a platform name to its dedicated sheet,
// case-insensitively.
func layoutForPlatform(platform string) (sheetLayout, bool) {
	p := strings.ToLower(strings.TrimSpace(platform))
	for _, l := range platformLayouts {
		if strings.ToLower(l.title) == p {
			return l, true
		}
	}
	return sheetLayout{}, false
}

func (l sheetLayout) headers() []string {
	out := make([]string, len(l.fields))
	for i, f := range l.fields {
		out[i] = f.header
	}
	return out
}

func (l sheetLayout) index(c column) int {
	for i, f := range l.fields {
		if f.col == c {
			return i
		}
	}
	return -1
}

func (l sheetLayout) encode(post *models.ScheduledPost) []string {
	publish := post.PublishTime.UTC()
	row := make([]string, len(l.fields))
	for i, f := range l.fields {
		switch f.col {
		case colID:
			row[i] = post.ID
		case colPlatform:
			if l.legacy {
				row[i] = post.Platform
			} else {
				row[i] = models.PlatformLabel(post.Platform)
			}
		case colTitle:
			row[i] = post.Title
		case colContent:
			row[i] = post.Content
		case colImage:
			row[i] = post.ImageURL
		case colDate:
			row[i] = publish.Format(dateLayout)
		case colTime:
			row[i] = publish.Format(timeLayout)
		case colStatus:
			status := post.Status
			if status == "" {
				status = models.PostStatusPending
			}
			row[i] = string(status)
		case colCreated:
			row[i] = post.CreatedAt.UTC().Format(time.RFC3339)
		case colHashtags:
			row[i] = post.Hashtags
		case colBoard:
			row[i] = post.BoardName
		case colPostID:
			row[i] = post.PlatformPostID
		}
	}
	return row
}

func (l sheetLayout) decode(row []string) *models.ScheduledPost {
	cell := func(c column) string {
		i := l.index(c)
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	post := &models.ScheduledPost{
		ID:             cell(colID),
		Platform:       cell(colPlatform),
		Title:          cell(colTitle),
		Content:        cell(colContent),
		ImageURL:       cell(colImage),
		PublishTime:    parseDateTime(cell(colDate), cell(colTime)),
		Hashtags:       cell(colHashtags),
		BoardName:      cell(colBoard),
		PlatformPostID: cell(colPostID),
		Sheet:          l.title,
	}

	if l.legacy {
		post.Status = models.PostStatus(cell(colStatus))
		if created, err := time.Parse(time.RFC3339, cell(colCreated)); err == nil {
			post.CreatedAt = created
		}
	} else {
		// platform sheets do not track status
		post.Status = models.PostStatusPending
	}
	return post
}

func parseDateTime(date, clock string) time.Time {
	if date == "" {
		return time.Time{}
	}
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.Parse(dateLayout+"T"+timeLayout, date+"T"+clock)
	if err != nil {
		return time.Time{}
	}
	return t
}

// columnLetter converts a zero-based column index to A1 notation.
func columnLetter(index int) string {
	letters := ""
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = string(rune('A'+(n-1)%26)) + letters
	}
	return letters
}
