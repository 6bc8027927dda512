// Package classify assigns each question thread a resolution status.
package classify

import "github.com/panbanda/edslo/pkg/models"

// Classify returns the status of a thread and the answer that resolves it.
//
// Rules are applied in priority order and the first match wins:
//
//  1. any staff/admin answer: Resolved, earliest staff answer
//  2. any endorsed answer: Endorsed, earliest endorsed answer
//  3. any answer: Unconfirmed, earliest answer
//  4. otherwise Pending with no answer
//
// The platform's own resolved marker is never consulted. Answers with equal
// timestamps keep their input order.
func Classify(thread models.Thread) models.Classification {
	if a := earliest(thread.Answers, models.Answer.IsStaff); a != nil {
		return models.Classification{Status: models.StatusResolved, Answer: a}
	}
	if a := earliest(thread.Answers, isEndorsed); a != nil {
		return models.Classification{Status: models.StatusEndorsed, Answer: a}
	}
	if a := earliest(thread.Answers, anyAnswer); a != nil {
		return models.Classification{Status: models.StatusUnconfirmed, Answer: a}
	}
	return models.Classification{Status: models.StatusPending}
}

func isEndorsed(a models.Answer) bool { return a.Endorsed }

func anyAnswer(models.Answer) bool { return true }

// earliest returns a copy of the earliest answer matching keep, or nil.
// Only a strictly earlier timestamp replaces the current pick.
func earliest(answers []models.Answer, keep func(models.Answer) bool) *models.Answer {
	var best *models.Answer
	for i := range answers {
		if !keep(answers[i]) {
			continue
		}
		if best == nil || answers[i].CreatedAt.Before(best.CreatedAt) {
			a := answers[i]
			best = &a
		}
	}
	return best
}
