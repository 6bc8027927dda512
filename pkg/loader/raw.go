package loader

import (
	"fmt"
	"time"

	"github.com/panbanda/edslo/pkg/models"
)

type rawUser struct {
	Role string `json:"role"`
}

type rawAnswer struct {
	ID        int      `json:"id"`
	CreatedAt string   `json:"created_at"`
	Endorsed  bool     `json:"endorsed"`
	Content   string   `json:"content"`
	User      *rawUser `json:"user"`
}

type rawThread struct {
	Number         int         `json:"number"`
	Type           string      `json:"type"`
	Title          string      `json:"title"`
	CreatedAt      string      `json:"created_at"`
	Category       string      `json:"category"`
	Subcategory    string      `json:"subcategory"`
	Subsubcategory string      `json:"subsubcategory"`
	IsAnswered     bool        `json:"is_answered"`
	Answers        []rawAnswer `json:"answers"`
}

// timestampLayouts are tried in order; the last two carry no offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (l *Loader) parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayouts[0], s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, l.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func (l *Loader) convert(rt rawThread) (models.Thread, error) {
	created, err := l.parseTime(rt.CreatedAt)
	if err != nil {
		return models.Thread{}, fmt.Errorf("created_at: %w", err)
	}

	thread := models.Thread{
		ID:               rt.Number,
		Title:            rt.Title,
		CreatedAt:        created,
		Category:         rt.Category,
		Subcategory:      rt.Subcategory,
		Subsubcategory:   rt.Subsubcategory,
		PlatformResolved: rt.IsAnswered,
		Answers:          make([]models.Answer, 0, len(rt.Answers)),
	}

	for i, ra := range rt.Answers {
		at, err := l.parseTime(ra.CreatedAt)
		if err != nil {
			return models.Thread{}, fmt.Errorf("answers[%d].created_at: %w", i, err)
		}
		role := models.RoleStudent
		if ra.User != nil && ra.User.Role != "" {
			role = models.Role(ra.User.Role)
		}
		thread.Answers = append(thread.Answers, models.Answer{
			ID:        ra.ID,
			CreatedAt: at,
			Role:      role,
			Endorsed:  ra.Endorsed,
			Content:   ra.Content,
		})
	}
	return thread, nil
}
